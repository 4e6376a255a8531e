package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"raffle/models"
	"raffle/services"
)

// RaffleStore implements services.Store on GORM/MySQL. Every method is a
// single-row operation; the one-entry-per-email-per-hour invariant lives in
// the uniq_entries_draw_email index and the open -> closed transition in a
// conditional update, so no multi-row transactions are needed.
type RaffleStore struct {
	db *gorm.DB
}

func NewRaffleStore(db *gorm.DB) *RaffleStore {
	return &RaffleStore{db: db}
}

func (s *RaffleStore) FindEntry(ctx context.Context, drawID, email string) (*models.Entry, error) {
	var entry models.Entry
	err := s.db.WithContext(ctx).Where("draw_id = ? AND email = ?", drawID, email).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RaffleStore) CreateEntry(ctx context.Context, entry *models.Entry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return fmt.Errorf("%w: %s in draw %s", services.ErrDuplicateEntry, entry.Email, entry.DrawID)
		}
		return err
	}
	return nil
}

func (s *RaffleStore) ListEntries(ctx context.Context, drawID string) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).Where("draw_id = ?", drawID).Order("id ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *RaffleStore) CountEntries(ctx context.Context, drawID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Entry{}).Where("draw_id = ?", drawID).Count(&count).Error
	return count, err
}

func (s *RaffleStore) FindDraw(ctx context.Context, drawID string) (*models.Draw, error) {
	var draw models.Draw
	err := s.db.WithContext(ctx).Where("draw_id = ?", drawID).First(&draw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

func (s *RaffleStore) EnsureDraw(ctx context.Context, draw *models.Draw) (*models.Draw, error) {
	// Concurrent first observers of a new hour race this create; the unique
	// draw_id index plus DoNothing makes the loser adopt the winner's row.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "draw_id"}}, DoNothing: true}).
		Create(draw).Error
	if err != nil && !isDuplicateKeyErr(err) {
		return nil, err
	}
	stored, err := s.FindDraw(ctx, draw.DrawID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("draw %s missing after upsert", draw.DrawID)
	}
	return stored, nil
}

func (s *RaffleStore) SetEntriesCount(ctx context.Context, drawID string, count int64) error {
	return s.db.WithContext(ctx).Model(&models.Draw{}).
		Where("draw_id = ? AND status = ?", drawID, models.DrawStatusOpen).
		Update("entries_count", count).Error
}

func (s *RaffleStore) CloseDraw(ctx context.Context, draw *models.Draw) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Draw{}).
		Where("draw_id = ? AND status = ?", draw.DrawID, models.DrawStatusOpen).
		Updates(map[string]interface{}{
			"status":          models.DrawStatusClosed,
			"starts_at":       draw.StartsAt,
			"ends_at":         draw.EndsAt,
			"prize":           draw.Prize,
			"entries_count":   draw.EntriesCount,
			"winner_entry_id": draw.WinnerEntryID,
			"winner_name":     draw.WinnerName,
			"winner_email":    draw.WinnerEmail,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *RaffleStore) LatestClosedDraw(ctx context.Context) (*models.Draw, error) {
	var draw models.Draw
	err := s.db.WithContext(ctx).
		Where("status = ?", models.DrawStatusClosed).
		Order("ends_at DESC").
		First(&draw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
