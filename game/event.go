package game

// EventKind identifies what a collision event reports
type EventKind string

const (
	EventObstacleDestroyed EventKind = "asteroid_destroyed"
	EventBonusCollected    EventKind = "bonus_collected"
	EventBonusDropped      EventKind = "bonus_dropped"
)

// Event is produced by the collision resolver for the hitmarker display of
// one recipient. Points is negative for deductions.
type Event struct {
	Kind    EventKind `json:"type" msgpack:"type"`
	ActorID string    `json:"playerId" msgpack:"playerId"`
	Pos     Vec2      `json:"pos" msgpack:"pos"`
	Points  int       `json:"points" msgpack:"points"`
}

// Death is reported once when an actor runs out of lives
type Death struct {
	ActorID    string
	Name       string
	Wallet     string
	FinalScore int
}

// TickResult is everything one Step produced for the network layer
type TickResult struct {
	Tick   uint64
	Events []Event
	Deaths []Death
}

// ByActor groups events by recipient, keeping their order
func (r TickResult) ByActor() map[string][]Event {
	out := make(map[string][]Event)
	for _, e := range r.Events {
		out[e.ActorID] = append(out[e.ActorID], e)
	}
	return out
}
