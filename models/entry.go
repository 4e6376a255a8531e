package models

import (
	"strings"
	"time"
)

// Entry is one participant's registration for a specific draw. The composite
// unique index makes the store the authority on one-entry-per-email-per-hour;
// application-level pre-checks are only an optimization on top of it.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(191);not null;uniqueIndex:uniq_entries_draw_email,priority:2" json:"email"`
	DrawID    string    `gorm:"type:varchar(16);not null;uniqueIndex:uniq_entries_draw_email,priority:1" json:"draw_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "entries"
}

// NormalizeEmail canonicalizes an email for duplicate detection.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
