package session

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examhall/examhall-backend/internal/model"
)

func TestLoginRedirectURL(t *testing.T) {
	tests := []struct {
		name     string
		loginURL string
		reason   Reason
		want     string
	}{
		{"idle", "/login", ReasonIdle, "/login?expired=true&reason=idle"},
		{"absolute", "/login", ReasonAbsolute, "/login?expired=true&reason=absolute"},
		{"absolute base URL", "https://app.example.com/login", ReasonIdle, "https://app.example.com/login?expired=true&reason=idle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoginRedirectURL(tt.loginURL, tt.reason); got != tt.want {
				t.Errorf("LoginRedirectURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// journalStore wraps memStore to record ordering against other
// collaborators.
type journalStore struct {
	*memStore
	journal *[]string
}

func (s *journalStore) Clear(ctx context.Context) error {
	*s.journal = append(*s.journal, "clear")
	return s.memStore.Clear(ctx)
}

// deadRedis returns a client whose commands fail fast. Publish errors
// are tolerated by the terminator, so tests only need the failure to be
// quick.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
}

func TestTerminateClearsStoreBeforeSignOut(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	journal := []string{}
	store := &journalStore{memStore: newMemStore(clock), journal: &journal}
	store.Init(ctx, model.RoleAdmin)
	revoker := &spyRevoker{journal: &journal}

	done := false
	term := NewSessionTerminator("sess-1", "/login", store, revoker, deadRedis(), func(string) { done = true }, zerolog.Nop())
	term.Terminate(ctx, ReasonIdle)

	if len(journal) != 2 || journal[0] != "clear" || journal[1] != "signout" {
		t.Fatalf("collaborator order = %v, want [clear signout]", journal)
	}
	if !done {
		t.Error("onDone callback did not run")
	}
}

func TestTerminateProceedsPastSignOutFailure(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(base)
	store := newMemStore(clock)
	store.Init(ctx, model.RoleStudent)
	revoker := &spyRevoker{err: errBoom}

	done := false
	term := NewSessionTerminator("sess-2", "/login", store, revoker, deadRedis(), func(string) { done = true }, zerolog.Nop())
	term.Terminate(ctx, ReasonAbsolute)

	if !store.clearedAll {
		t.Error("store was not cleared")
	}
	if len(revoker.calls) != 1 || revoker.calls[0] != "sess-2" {
		t.Errorf("revoker calls = %v, want [sess-2]", revoker.calls)
	}
	if !done {
		t.Error("sign-out failure blocked the rest of the sequence")
	}
}
