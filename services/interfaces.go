package services

import (
	"context"

	"raffle/models"
)

// Store is the persistence surface the raffle needs. Lookups return (nil, nil)
// when no record matches. Implementations must report a uniqueness conflict on
// entry creation as ErrDuplicateEntry; that conflict, not the caller's
// pre-check, is the canonical duplicate signal.
type Store interface {
	FindEntry(ctx context.Context, drawID, email string) (*models.Entry, error)
	CreateEntry(ctx context.Context, entry *models.Entry) error
	ListEntries(ctx context.Context, drawID string) ([]models.Entry, error)
	CountEntries(ctx context.Context, drawID string) (int64, error)

	FindDraw(ctx context.Context, drawID string) (*models.Draw, error)
	// EnsureDraw creates the draw row if absent (upsert keyed by draw_id) and
	// returns the stored record, whichever concurrent caller created it.
	EnsureDraw(ctx context.Context, draw *models.Draw) (*models.Draw, error)
	// SetEntriesCount refreshes the cached count on a still-open draw.
	SetEntriesCount(ctx context.Context, drawID string, count int64) error
	// CloseDraw applies the closed outcome only if the draw is still open.
	// It reports whether the transition happened.
	CloseDraw(ctx context.Context, draw *models.Draw) (bool, error)
	LatestClosedDraw(ctx context.Context) (*models.Draw, error)
}

// PaymentStatusPaid is the provider-reported status that settles a checkout.
const PaymentStatusPaid = "paid"

type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

type CheckoutParams struct {
	AmountCents int64
	Currency    string
	ProductName string
	Metadata    map[string]string
}

// PaymentProvider is the external checkout service. Session metadata round-trips
// verbatim between creation and retrieval.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
}
