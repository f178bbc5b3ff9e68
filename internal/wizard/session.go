package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"laura-backend/internal/cache"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("wizard session not found")

const sessionKeyPrefix = "wizard:"

// Sessions keeps in-progress wizards in the cache, one JSON document per
// visitor, refreshed on every write.
type Sessions struct {
	cache cache.Cache
	ttl   time.Duration

	// striped locks serialize updates of the same session in this process
	locks [64]sync.Mutex
}

func NewSessions(c cache.Cache, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Sessions{cache: c, ttl: ttl}
}

func (s *Sessions) Create(ctx context.Context, initial State) (string, error) {
	id := uuid.NewString()
	if err := s.Save(ctx, id, initial); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Sessions) Load(ctx context.Context, id string) (State, error) {
	if _, err := uuid.Parse(id); err != nil {
		return State{}, ErrSessionNotFound
	}
	raw, ok, err := s.cache.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, ErrSessionNotFound
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, ErrSessionNotFound
	}
	return st, nil
}

func (s *Sessions) Save(ctx context.Context, id string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKeyPrefix+id, raw, s.ttl)
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+id)
}

// Update loads the session, applies fn and stores the result unless fn
// fails. The state passed to fn is discarded on error.
func (s *Sessions) Update(ctx context.Context, id string, fn func(*State) error) (State, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.Load(ctx, id)
	if err != nil {
		return State{}, err
	}
	if err := fn(&st); err != nil {
		return State{}, err
	}
	if err := s.Save(ctx, id, st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Submit runs the terminal transition under the session lock. Once the lead
// is stored the visitor's details are dropped: the session is replaced by a
// tombstone that only answers ErrAlreadySubmitted, or removed outright when
// the tombstone cannot be written. Either way a repeated submit cannot save
// the lead twice. A non-empty id with an error means the lead was stored but
// the session could not be cleared.
func (s *Sessions) Submit(ctx context.Context, id string, saver Saver) (string, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.Load(ctx, id)
	if err != nil {
		return "", err
	}
	leadID, err := st.Submit(ctx, saver)
	if err != nil {
		return "", err
	}

	tombstone := State{Step: StepContact, Submitted: true, LeadID: leadID}
	if err := s.Save(ctx, id, tombstone); err != nil {
		if delErr := s.Delete(ctx, id); delErr != nil {
			return leadID, errors.Join(err, delErr)
		}
	}
	return leadID, nil
}

func (s *Sessions) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}
