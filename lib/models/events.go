package models

type EventKind int

const (
	LiveStarted EventKind = iota + 1
	GameChanged
)

func (k EventKind) String() string {
	switch k {
	case LiveStarted:
		return "live_started"
	case GameChanged:
		return "game_changed"
	default:
		return "unknown"
	}
}

// StreamEvent is an upstream live-status change for a single streamer.
// Title is only populated for LiveStarted.
type StreamEvent struct {
	Kind     EventKind
	Streamer string
	GameName string
	Title    string
}
