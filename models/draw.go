package models

import (
	"fmt"
	"time"
)

const (
	DrawStatusOpen   = "open"
	DrawStatusClosed = "closed"
)

// drawIDLayout formats a UTC instant truncated to its hour as YYYYMMDDHH.
// Ids in later hours compare greater as plain strings.
const drawIDLayout = "2006010215"

type Draw struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	DrawID        string    `gorm:"type:varchar(16);not null;uniqueIndex" json:"draw_id"`
	StartsAt      time.Time `gorm:"not null" json:"starts_at"`
	EndsAt        time.Time `gorm:"not null;index" json:"ends_at"`
	Prize         float64   `gorm:"type:decimal(15,2);not null" json:"prize"`
	Status        string    `gorm:"type:varchar(16);not null;default:'open'" json:"status"`
	EntriesCount  int       `gorm:"not null;default:0" json:"entries_count"`
	WinnerEntryID *uint     `json:"winner_entry_id,omitempty"`
	WinnerName    *string   `gorm:"type:varchar(100)" json:"winner_name,omitempty"`
	WinnerEmail   *string   `gorm:"type:varchar(191)" json:"winner_email,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Draw) TableName() string {
	return "draws"
}

func (d *Draw) IsClosed() bool {
	return d.Status == DrawStatusClosed
}

// DrawIDAt returns the identifier of the draw covering t. Every instant within
// the same UTC clock-hour maps to the same id.
func DrawIDAt(t time.Time) string {
	return t.UTC().Format(drawIDLayout)
}

// HourWindow returns the [start, end) window of the draw covering t.
func HourWindow(t time.Time) (time.Time, time.Time) {
	start := t.UTC().Truncate(time.Hour)
	return start, start.Add(time.Hour)
}

// ParseDrawID recovers the window start encoded in a draw id.
func ParseDrawID(id string) (time.Time, error) {
	start, err := time.ParseInLocation(drawIDLayout, id, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid draw id %q: %w", id, err)
	}
	return start, nil
}
