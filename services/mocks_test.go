package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"raffle/models"
)

// fakeStore emulates the SQL store in memory, including the composite unique
// index on (draw_id, email) and the conditional open -> closed transition.
type fakeStore struct {
	mu      sync.Mutex
	entries []models.Entry
	draws   map[string]*models.Draw
	nextID  uint
	err     error // when set, every call fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{draws: make(map[string]*models.Draw)}
}

func (f *fakeStore) FindEntry(_ context.Context, drawID, email string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.entries {
		if f.entries[i].DrawID == drawID && f.entries[i].Email == email {
			e := f.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateEntry(_ context.Context, entry *models.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.entries {
		if f.entries[i].DrawID == entry.DrawID && f.entries[i].Email == entry.Email {
			return fmt.Errorf("%w: %s in draw %s", ErrDuplicateEntry, entry.Email, entry.DrawID)
		}
	}
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeStore) ListEntries(_ context.Context, drawID string) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Entry
	for _, e := range f.entries {
		if e.DrawID == drawID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CountEntries(_ context.Context, drawID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, e := range f.entries {
		if e.DrawID == drawID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) FindDraw(_ context.Context, drawID string) (*models.Draw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.draws[drawID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) EnsureDraw(_ context.Context, draw *models.Draw) (*models.Draw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.draws[draw.DrawID]; ok {
		cp := *d
		return &cp, nil
	}
	cp := *draw
	f.draws[draw.DrawID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) SetEntriesCount(_ context.Context, drawID string, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if d, ok := f.draws[drawID]; ok && d.Status == models.DrawStatusOpen {
		d.EntriesCount = int(count)
	}
	return nil
}

func (f *fakeStore) CloseDraw(_ context.Context, draw *models.Draw) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	d, ok := f.draws[draw.DrawID]
	if !ok || d.Status != models.DrawStatusOpen {
		return false, nil
	}
	d.Status = models.DrawStatusClosed
	d.StartsAt = draw.StartsAt
	d.EndsAt = draw.EndsAt
	d.Prize = draw.Prize
	d.EntriesCount = draw.EntriesCount
	d.WinnerEntryID = draw.WinnerEntryID
	d.WinnerName = draw.WinnerName
	d.WinnerEmail = draw.WinnerEmail
	return true, nil
}

func (f *fakeStore) LatestClosedDraw(_ context.Context) (*models.Draw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var closed []*models.Draw
	for _, d := range f.draws {
		if d.Status == models.DrawStatusClosed {
			closed = append(closed, d)
		}
	}
	if len(closed) == 0 {
		return nil, nil
	}
	sort.Slice(closed, func(i, j int) bool { return closed[i].EndsAt.After(closed[j].EndsAt) })
	cp := *closed[0]
	return &cp, nil
}

// fakeProvider is an in-memory checkout service: sessions start unpaid and
// flip to paid via markPaid, mirroring the remote provider's lifecycle.
type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession
	created  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: make(map[string]*CheckoutSession)}
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created++
	meta := make(map[string]string, len(params.Metadata))
	for k, v := range params.Metadata {
		meta[k] = v
	}
	sess := &CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", p.created),
		URL:           fmt.Sprintf("https://checkout.example/%d", p.created),
		PaymentStatus: "unpaid",
		AmountTotal:   params.AmountCents,
		Currency:      params.Currency,
		Metadata:      meta,
	}
	p.sessions[sess.ID] = sess
	out := *sess
	return &out, nil
}

func (p *fakeProvider) RetrieveCheckoutSession(_ context.Context, id string) (*CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session %s", id)
	}
	out := *sess
	return &out, nil
}

func (p *fakeProvider) markPaid(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sess, ok := p.sessions[id]; ok {
		sess.PaymentStatus = PaymentStatusPaid
	}
}
