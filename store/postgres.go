package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TimeoSitruk/tupref/models"
)

// roomRecord is the persisted form of a room: the full state as one JSON
// document keyed by the public room id.
type roomRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	State     []byte `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (roomRecord) TableName() string {
	return "rooms"
}

// PostgresStore keeps rooms in a relational table so they survive restarts.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&roomRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate rooms table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Create(ctx context.Context, id string, room *models.Room) error {
	state, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", id, err)
	}
	record := roomRecord{ID: id, State: state}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert room %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Room, error) {
	var record roomRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read room %s: %w", id, err)
	}
	var room models.Room
	if err := json.Unmarshal(record.State, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", id, err)
	}
	return &room, nil
}

func (s *PostgresStore) Put(ctx context.Context, id string, room *models.Room) error {
	state, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", id, err)
	}
	// Put is an unconditional overwrite, so upsert rather than update:
	// an id that was never created still gets stored.
	record := roomRecord{ID: id, State: state}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to store room %s: %w", id, err)
	}
	return nil
}
