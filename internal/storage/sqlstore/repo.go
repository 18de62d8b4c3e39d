// Package sqlstore persists POS collections in the pos_state table through gorm.
package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/counterpos/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements storage.Store over a SQL database.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository returns a state repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) Read(ctx context.Context, key string) (string, bool, error) {
	var entry models.StateEntry
	err := r.db.WithContext(ctx).
		Where("state_key = ?", key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Document, true, nil
}

func (r *Repository) Write(ctx context.Context, key, value string) error {
	entry := models.StateEntry{Key: key, Document: value, UpdatedAt: r.now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
		}).
		Create(&entry).Error
}
