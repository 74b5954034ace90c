package models

// Player is a participant of a room. The id is caller-supplied and treated
// as an opaque string; uniqueness inside a room is enforced at join time,
// not here.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
