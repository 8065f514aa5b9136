package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one keyed blob row in the application database.
type Entry struct {
	Key       string    `gorm:"primaryKey;size:255"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Entry model.
func (Entry) TableName() string {
	return "storage_entries"
}

// SQLite is a Backend stored in the application's SQLite database via GORM.
// Selected with storage.backend=sqlite; the file backend is the default.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite creates a database-backed store and migrates its table.
func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating storage entries: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get returns the value stored under key, if any.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading storage entry: %w", err)
	}
	return entry.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("writing storage entry: %w", err)
	}
	return nil
}
