package history

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Insert stores a record. Re-inserting the same request id is a no-op, so
// redelivered events are harmless.
func (r *Repo) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == "" || rec.UserID == "" {
		return errors.New("history: request id and user id are required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec).Error
}

// Archive stores a settled generation event directly.
func (r *Repo) Archive(ctx context.Context, ev Event) error {
	rec := RecordFromEvent(ev)
	return r.Insert(ctx, &rec)
}

// ListByUser returns records newest first. ULIDs sort by time, so beforeID
// pages backwards.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit int, beforeID string) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit)
	if beforeID != "" {
		q = q.Where("id < ?", beforeID)
	}

	var recs []Record
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
