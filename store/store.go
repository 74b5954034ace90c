package store

import (
	"context"
	"errors"

	"github.com/TimeoSitruk/tupref/models"
)

var (
	ErrNotFound      = errors.New("room not found")
	ErrAlreadyExists = errors.New("room already exists")
)

// RoomStore maps room ids to room state. Each call is atomic on its own,
// but the store gives no atomicity across a get-then-put sequence; the
// engine serializes read-modify-write per room on top of this.
type RoomStore interface {
	// Create stores a new room and fails with ErrAlreadyExists if the id
	// is taken.
	Create(ctx context.Context, id string, room *models.Room) error
	// Get returns the room or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Room, error)
	// Put overwrites the room unconditionally.
	Put(ctx context.Context, id string, room *models.Room) error
}
