package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError      Event = "error"
	EventPong       Event = "pong"
	EventTerminated Event = "session_terminated"
)

// TerminatedResponse tells a connected client its session was forcibly
// ended and where to navigate.
type TerminatedResponse struct {
	Event    Event  `json:"event"`
	Reason   string `json:"reason"`
	Redirect string `json:"redirect"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
