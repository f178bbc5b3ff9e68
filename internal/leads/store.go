// Package leads owns the persisted list of booking requests: creation from a
// submitted wizard, admin triage (status, notes, deletion) and CSV export.
package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"laura-backend/internal/kv"
	"laura-backend/internal/metrics"
	"laura-backend/internal/pricing"
	"laura-backend/internal/wizard"
)

var (
	ErrNotFound      = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrStorage       = errors.New("lead storage failure")
)

// Store keeps every lead in a single kv value. Each mutation rewrites the
// whole list, so a failed write leaves the previous list untouched.
type Store struct {
	kv         kv.Store
	rates      pricing.RatesSource
	location   *time.Location
	log        *slog.Logger
	dispatcher *Dispatcher
	now        func() time.Time

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewStore(store kv.Store, rates pricing.RatesSource, location *time.Location, log *slog.Logger, dispatcher *Dispatcher) *Store {
	if location == nil {
		location = time.UTC
	}
	return &Store{
		kv:         store,
		rates:      rates,
		location:   location,
		log:        log,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// load returns an error only when the backend cannot be read. A corrupt
// value is logged and reads as an empty list.
func (s *Store) load(ctx context.Context) ([]Lead, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", ErrStorage, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Lead{}, nil
	}
	var items []Lead
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("leads load: corrupt data, treating as empty", slog.String("error", err.Error()))
		return []Lead{}, nil
	}
	if items == nil {
		items = []Lead{}
	}
	return items, nil
}

func (s *Store) persist(ctx context.Context, items []Lead) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorage, err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("%w: write: %v", ErrStorage, err)
	}
	return nil
}

// GetAll returns every lead, most recently created first. It never fails:
// an unreadable store yields an empty list.
func (s *Store) GetAll(ctx context.Context) []Lead {
	items, err := s.load(ctx)
	if err != nil {
		metrics.LeadStoreErrors.WithLabelValues("get_all").Inc()
		s.log.Error("leads get all: storage error", slog.String("error", err.Error()))
		return []Lead{}
	}
	return items
}

func (s *Store) Get(ctx context.Context, id string) (Lead, error) {
	for _, l := range s.GetAll(ctx) {
		if l.ID == id {
			return l, nil
		}
	}
	return Lead{}, ErrNotFound
}

// Save turns a submitted wizard into a new lead and returns its id. The lead
// is forwarded to the configured collaborators only after the local write
// succeeded; their outcome never reaches the caller.
func (s *Store) Save(ctx context.Context, state wizard.State) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		metrics.LeadStoreErrors.WithLabelValues("save").Inc()
		return "", err
	}

	now := s.now().In(s.location)
	estimate := state.Estimate(s.rates.Current())
	lead := Lead{
		ID:             NewID(now),
		CreatedAt:      now,
		Status:         StatusNew,
		Name:           strings.TrimSpace(state.Details.Name),
		Phone:          strings.TrimSpace(state.Details.Phone),
		City:           strings.TrimSpace(state.Details.City),
		Message:        strings.TrimSpace(state.Details.Comments),
		Service:        state.Service,
		ServiceLabel:   pricing.ServiceLabel(state.Service),
		Frequency:      state.Frequency,
		FrequencyLabel: pricing.FrequencyLabel(state.Frequency),
		Hours:          state.Hours,
		PriceEstimate:  estimate.FinalPrice,
		Options:        state.Options,
		Details:        state.Details,
	}

	next := make([]Lead, 0, len(items)+1)
	next = append(next, lead)
	next = append(next, items...)
	if err := s.persist(ctx, next); err != nil {
		metrics.LeadStoreErrors.WithLabelValues("save").Inc()
		return "", err
	}

	metrics.LeadsSaved.Inc()
	s.log.Info("leads save: stored", slog.String("lead_id", lead.ID), slog.String("service", string(lead.Service)))
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(lead)
	}
	return lead.ID, nil
}

// mutate applies fn to the lead with the given id and persists the list.
// It reports false without writing when no lead matches.
func (s *Store) mutate(ctx context.Context, op, id string, fn func(*Lead)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		metrics.LeadStoreErrors.WithLabelValues(op).Inc()
		return false, err
	}
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	fn(&items[idx])
	now := s.now().In(s.location)
	items[idx].UpdatedAt = &now

	if err := s.persist(ctx, items); err != nil {
		metrics.LeadStoreErrors.WithLabelValues(op).Inc()
		return false, err
	}
	return true, nil
}

// UpdateStatus sets any status from any status; there is no transition guard.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) (bool, error) {
	if !IsValidStatus(string(status)) {
		return false, ErrInvalidStatus
	}
	return s.mutate(ctx, "update_status", id, func(l *Lead) {
		l.Status = status
	})
}

// AddNote replaces the internal notes of a lead.
func (s *Store) AddNote(ctx context.Context, id, text string) (bool, error) {
	return s.mutate(ctx, "add_note", id, func(l *Lead) {
		l.Notes = text
	})
}

// Delete removes a lead. Deleting an unknown id is a no-op reporting false.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		metrics.LeadStoreErrors.WithLabelValues("delete").Inc()
		return false, err
	}
	kept := make([]Lead, 0, len(items))
	for _, l := range items {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if err := s.persist(ctx, kept); err != nil {
		metrics.LeadStoreErrors.WithLabelValues("delete").Inc()
		return false, err
	}
	return true, nil
}

// ExportAll renders every lead as the spreadsheet CSV.
func (s *Store) ExportAll(ctx context.Context) []byte {
	return ExportCSV(s.GetAll(ctx), s.location)
}
