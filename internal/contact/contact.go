// Package contact stores messages sent from the site's contact form.
package contact

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"laura-backend/internal/kv"

	"github.com/google/uuid"
)

const StorageKey = "contactSubmissions"

// Areas lists the service areas offered by the form, in display order.
var Areas = []string{"Paris", "Île-de-France", "Lyon", "Marseille", "Bordeaux", "Lille", "Toulouse", "Autre"}

type Request struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,contactphone"`
	Area    string `json:"area" validate:"required,oneof=Paris Île-de-France Lyon Marseille Bordeaux Lille Toulouse Autre"`
	Message string `json:"message" validate:"required,max=5000"`
}

type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Area      string    `json:"area"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	kv  kv.Store
	loc *time.Location
	log *slog.Logger
	mu  sync.Mutex
}

func NewStore(store kv.Store, loc *time.Location, log *slog.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{kv: store, loc: loc, log: log}
}

// List returns submissions newest first. Unreadable data yields an empty
// list and a log line.
func (s *Store) List(ctx context.Context) []Submission {
	items, err := s.load(ctx)
	if err != nil {
		s.log.Error("contact list: storage error", slog.String("error", err.Error()))
		return []Submission{}
	}
	return items
}

func (s *Store) Add(ctx context.Context, req Request) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Area:      req.Area,
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: time.Now().In(s.loc),
	}
	raw, err := json.Marshal(append([]Submission{sub}, items...))
	if err != nil {
		return Submission{}, err
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return Submission{}, fmt.Errorf("contact store write: %w", err)
	}
	return sub, nil
}

func (s *Store) load(ctx context.Context) ([]Submission, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("contact store read: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Submission{}, nil
	}
	var items []Submission
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		s.log.Warn("contact load: corrupt data, treating as empty")
		return []Submission{}, nil
	}
	return items, nil
}
