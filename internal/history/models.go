// Package history archives settled generations.
package history

import "time"

// Event is published once per settled generation.
type Event struct {
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id"`
	Topic     string    `json:"topic"`
	State     string    `json:"state"`
	Content   string    `json:"content,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	SettledAt time.Time `json:"settled_at"`
}

type Record struct {
	ID      string `gorm:"primaryKey;size:26" json:"id"` // ULID of the generation request
	UserID  string `gorm:"type:varchar(64);index:idx_gen_user_created,priority:1;not null" json:"-"`
	Topic   string `gorm:"type:text;not null" json:"topic"`
	Status  string `gorm:"type:varchar(16);index;not null" json:"status"`
	Content string `gorm:"type:text" json:"content,omitempty"`

	// Filled when failed
	Reason *string `gorm:"type:text" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"index:idx_gen_user_created,priority:2" json:"created_at"`
}

func (Record) TableName() string { return "generation_records" }

func RecordFromEvent(ev Event) Record {
	rec := Record{
		ID:        ev.RequestID,
		UserID:    ev.UserID,
		Topic:     ev.Topic,
		Status:    ev.State,
		Content:   ev.Content,
		CreatedAt: ev.SettledAt,
	}
	if ev.Reason != "" {
		reason := ev.Reason
		rec.Reason = &reason
	}
	return rec
}
