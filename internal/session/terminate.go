package session

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/config"
)

// Revoker invalidates the remote authentication session.
type Revoker interface {
	SignOut(ctx context.Context, sessionID string) error
}

// Event is a session lifecycle notification pushed to connected clients.
type Event struct {
	Type     string `json:"type"`
	Reason   Reason `json:"reason,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// EventTerminated is pushed when a session is forcibly ended.
const EventTerminated = "session_terminated"

// LoginRedirectURL builds the login entry point URL carrying the
// machine-readable termination reason.
func LoginRedirectURL(loginURL string, reason Reason) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		u = &url.URL{Path: "/login"}
	}
	q := u.Query()
	q.Set("expired", "true")
	q.Set("reason", string(reason))
	u.RawQuery = q.Encode()
	return u.String()
}

// SessionTerminator ends one session: clears the clock store, revokes
// the remote authentication session, and publishes the redirect so any
// connected client navigates to the login surface.
//
// The store is cleared first on purpose: even if the remote sign-out
// fails, the client must no longer believe it holds a valid session.
type SessionTerminator struct {
	sessionID string
	loginURL  string
	store     Store
	auth      Revoker
	rdb       *redis.Client
	onDone    func(sessionID string)
	log       zerolog.Logger
}

// NewSessionTerminator wires a terminator for one session. onDone, if
// non-nil, runs after termination so the owner can release resources.
func NewSessionTerminator(
	sessionID, loginURL string,
	store Store,
	auth Revoker,
	rdb *redis.Client,
	onDone func(sessionID string),
	log zerolog.Logger,
) *SessionTerminator {
	return &SessionTerminator{
		sessionID: sessionID,
		loginURL:  loginURL,
		store:     store,
		auth:      auth,
		rdb:       rdb,
		onDone:    onDone,
		log:       log.With().Str("component", "session_terminator").Str("session_id", sessionID).Logger(),
	}
}

// Terminate runs the termination sequence. It never fails: every step's
// error is logged and the sequence continues, because once termination
// is decided it must be unconditional.
func (t *SessionTerminator) Terminate(ctx context.Context, reason Reason) {
	if err := t.store.Clear(ctx); err != nil {
		t.log.Error().Err(err).Msg("Clock store clear failed")
	}

	if err := t.auth.SignOut(ctx, t.sessionID); err != nil {
		t.log.Warn().Err(err).Msg("Remote sign-out failed, proceeding with redirect")
	}

	t.publish(ctx, Event{
		Type:     EventTerminated,
		Reason:   reason,
		Redirect: LoginRedirectURL(t.loginURL, reason),
	})

	if t.onDone != nil {
		t.onDone(t.sessionID)
	}
}

func (t *SessionTerminator) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		t.log.Error().Err(err).Msg("Event marshal failed")
		return
	}
	channel := config.CacheKey.SessionEventsChannel(t.sessionID)
	if err := t.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		t.log.Warn().Err(err).Msg("Event publish failed")
	}
}
