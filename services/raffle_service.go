package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"raffle/models"
)

type Config struct {
	Prize          float64
	TicketAmount   int64 // smallest currency unit
	TicketCurrency string
}

// RaffleService implements the draw lifecycle: admission, payment
// reconciliation, status projection and closing. A nil payments provider means
// the payment gate is disabled; this is decided once at startup.
type RaffleService struct {
	store    Store
	payments PaymentProvider
	cfg      Config
	log      *logrus.Entry
}

func NewRaffleService(store Store, payments PaymentProvider, cfg Config) *RaffleService {
	if cfg.Prize <= 0 {
		cfg.Prize = 1000
	}
	if cfg.TicketCurrency == "" {
		cfg.TicketCurrency = "usd"
	}
	return &RaffleService{
		store:    store,
		payments: payments,
		cfg:      cfg,
		log:      logrus.WithField("component", "raffle"),
	}
}

func (s *RaffleService) PaymentsEnabled() bool {
	return s.payments != nil
}

type CurrentDrawView struct {
	DrawID       string    `json:"draw_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Prize        float64   `json:"prize"`
	Status       string    `json:"status"`
	EntriesCount int64     `json:"entries_count"`
}

type PaymentsView struct {
	Enabled  bool    `json:"enabled"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

type StatusView struct {
	Current    CurrentDrawView `json:"current"`
	LastWinner *models.Draw    `json:"last_winner"`
	Payments   PaymentsView    `json:"payments"`
}

// Status projects the current draw, lazily materializing its record the first
// time any caller observes a new hour.
func (s *RaffleService) Status(ctx context.Context, now time.Time) (*StatusView, error) {
	drawID := models.DrawIDAt(now)
	start, end := models.HourWindow(now)

	draw, err := s.store.EnsureDraw(ctx, &models.Draw{
		DrawID:   drawID,
		StartsAt: start,
		EndsAt:   end,
		Prize:    s.cfg.Prize,
		Status:   models.DrawStatusOpen,
	})
	if err != nil {
		return nil, storeErr("ensure draw", err)
	}

	count, err := s.store.CountEntries(ctx, drawID)
	if err != nil {
		return nil, storeErr("count entries", err)
	}
	if !draw.IsClosed() {
		// Best-effort cache refresh; the count is only authoritative at close.
		if err := s.store.SetEntriesCount(ctx, drawID, count); err != nil {
			s.log.WithError(err).WithField("draw_id", drawID).Warn("entries_count refresh failed")
		}
	}

	last, err := s.store.LatestClosedDraw(ctx)
	if err != nil {
		return nil, storeErr("latest closed draw", err)
	}

	view := &StatusView{
		Current: CurrentDrawView{
			DrawID:       drawID,
			StartsAt:     start,
			EndsAt:       end,
			Prize:        s.cfg.Prize,
			Status:       draw.Status,
			EntriesCount: count,
		},
		LastWinner: last,
		Payments: PaymentsView{
			Enabled: s.PaymentsEnabled(),
		},
	}
	if s.PaymentsEnabled() {
		view.Payments.Amount = s.cfg.TicketAmount
		view.Payments.Currency = s.cfg.TicketCurrency
		view.Payments.Price = float64(s.cfg.TicketAmount) / 100
	}
	return view, nil
}

// Enter admits a participant into the draw covering now. When the payment gate
// is active, direct admission is disabled entirely.
func (s *RaffleService) Enter(ctx context.Context, now time.Time, name, email string) (*models.Entry, error) {
	if s.PaymentsEnabled() {
		return nil, ErrPaymentRequired
	}
	return s.admit(ctx, models.DrawIDAt(now), name, email)
}

func (s *RaffleService) admit(ctx context.Context, drawID, name, email string) (*models.Entry, error) {
	email = models.NormalizeEmail(email)

	existing, err := s.store.FindEntry(ctx, drawID, email)
	if err != nil {
		return nil, storeErr("find entry", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEntry
	}

	entry := &models.Entry{Name: name, Email: email, DrawID: drawID}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			return nil, ErrDuplicateEntry
		}
		return nil, storeErr("create entry", err)
	}
	return entry, nil
}

// StartCheckout opens a remote checkout session bound to the draw covering
// now. The draw id travels in the session metadata so confirmation stays
// self-contained: a payment belongs to the hour it was initiated in, even if
// it settles after the boundary.
func (s *RaffleService) StartCheckout(ctx context.Context, now time.Time, name, email string) (*CheckoutSession, error) {
	if !s.PaymentsEnabled() {
		return nil, ErrPaymentUnavailable
	}
	drawID := models.DrawIDAt(now)
	email = models.NormalizeEmail(email)

	existing, err := s.store.FindEntry(ctx, drawID, email)
	if err != nil {
		return nil, storeErr("find entry", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEntry
	}

	sess, err := s.payments.CreateCheckoutSession(ctx, CheckoutParams{
		AmountCents: s.cfg.TicketAmount,
		Currency:    s.cfg.TicketCurrency,
		ProductName: fmt.Sprintf("Sorteo %s", drawID),
		Metadata: map[string]string{
			"draw_id": drawID,
			"name":    name,
			"email":   email,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}

// ConfirmCheckout settles a checkout session into an entry. The caller only
// supplies the session id; draw, name and email all come from the session
// metadata. Safe to call any number of times for the same session.
func (s *RaffleService) ConfirmCheckout(ctx context.Context, sessionID string) (*models.Entry, error) {
	if !s.PaymentsEnabled() {
		return nil, ErrPaymentUnavailable
	}

	sess, err := s.payments.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if sess.PaymentStatus != PaymentStatusPaid {
		return nil, ErrPaymentIncomplete
	}

	drawID := sess.Metadata["draw_id"]
	name := sess.Metadata["name"]
	email := models.NormalizeEmail(sess.Metadata["email"])
	if drawID == "" || name == "" || email == "" {
		return nil, ErrMalformedSession
	}

	existing, err := s.store.FindEntry(ctx, drawID, email)
	if err != nil {
		return nil, storeErr("find entry", err)
	}
	if existing != nil {
		return existing, nil
	}

	entry := &models.Entry{Name: name, Email: email, DrawID: drawID}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			// Lost a race against a concurrent confirm of the same session.
			if existing, ferr := s.store.FindEntry(ctx, drawID, email); ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, storeErr("create entry", err)
	}
	s.log.WithFields(logrus.Fields{"draw_id": drawID, "entry_id": entry.ID}).Info("checkout settled into entry")
	return entry, nil
}

type CloseResult struct {
	Draw          *models.Draw
	AlreadyClosed bool
}

// CloseCurrent closes the draw covering now.
func (s *RaffleService) CloseCurrent(ctx context.Context, now time.Time) (*CloseResult, error) {
	return s.Close(ctx, models.DrawIDAt(now))
}

// Close finalizes a draw: snapshot its entries, pick one winner uniformly at
// random and transition the record open -> closed. Closed is terminal: once a
// winner is recorded, any later invocation returns that same outcome, so
// at-least-once external triggering can never re-roll a winner.
func (s *RaffleService) Close(ctx context.Context, drawID string) (*CloseResult, error) {
	start, err := models.ParseDrawID(drawID)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Hour)

	draw, err := s.store.FindDraw(ctx, drawID)
	if err != nil {
		return nil, storeErr("find draw", err)
	}
	if draw != nil && draw.IsClosed() {
		return &CloseResult{Draw: draw, AlreadyClosed: true}, nil
	}
	if draw == nil {
		// A past hour nobody observed still gets a record to close.
		draw, err = s.store.EnsureDraw(ctx, &models.Draw{
			DrawID:   drawID,
			StartsAt: start,
			EndsAt:   end,
			Prize:    s.cfg.Prize,
			Status:   models.DrawStatusOpen,
		})
		if err != nil {
			return nil, storeErr("ensure draw", err)
		}
		if draw.IsClosed() {
			return &CloseResult{Draw: draw, AlreadyClosed: true}, nil
		}
	}

	entries, err := s.store.ListEntries(ctx, drawID)
	if err != nil {
		return nil, storeErr("list entries", err)
	}

	closed := &models.Draw{
		DrawID:       drawID,
		StartsAt:     start,
		EndsAt:       end,
		Prize:        s.cfg.Prize,
		Status:       models.DrawStatusClosed,
		EntriesCount: len(entries),
	}
	if len(entries) > 0 {
		winner := entries[rand.Intn(len(entries))]
		closed.WinnerEntryID = &winner.ID
		closed.WinnerName = &winner.Name
		closed.WinnerEmail = &winner.Email
	}

	applied, err := s.store.CloseDraw(ctx, closed)
	if err != nil {
		return nil, storeErr("close draw", err)
	}
	if !applied {
		// A concurrent close won the conditional update; its outcome stands.
		current, err := s.store.FindDraw(ctx, drawID)
		if err != nil {
			return nil, storeErr("find draw", err)
		}
		if current == nil || !current.IsClosed() {
			return nil, storeErr("close draw", fmt.Errorf("draw %s not closed after conditional update", drawID))
		}
		return &CloseResult{Draw: current, AlreadyClosed: true}, nil
	}

	final, err := s.store.FindDraw(ctx, drawID)
	if err != nil {
		return nil, storeErr("find draw", err)
	}
	if final == nil {
		final = closed
	}
	s.log.WithFields(logrus.Fields{
		"draw_id": drawID,
		"entries": final.EntriesCount,
	}).Info("draw closed")
	return &CloseResult{Draw: final}, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
