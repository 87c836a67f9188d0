package sync

import "time"

const (
	EventCreate = "character.create"
	EventUpdate = "character.update"
	EventDelete = "character.delete"
)

// CharacterEvent is pushed to feed subscribers after a successful overlay write.
type CharacterEvent struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Source    string    `json:"source"`
	DeletedAt string    `json:"deleted_at,omitempty"`
	At        time.Time `json:"at"`
}
