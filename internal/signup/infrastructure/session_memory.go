package infrastructure

import (
	"github.com/google/uuid"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"sync"
	"time"
)

// MemorySessionStore keeps drafts in process memory. Drafts are copied in and
// out so callers never share state with the store.
type MemorySessionStore struct {
	mu     sync.RWMutex
	drafts map[string]domain.Draft
	now    func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		drafts: make(map[string]domain.Draft),
		now:    time.Now,
	}
}

func (s *MemorySessionStore) Create(ttl time.Duration) (*domain.Draft, error) {
	now := s.now()
	draft := domain.Draft{
		ID:        uuid.NewString(),
		LinkState: domain.LinkIdle,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = draft
	return copyDraft(draft), nil
}

func (s *MemorySessionStore) Get(id string) (*domain.Draft, error) {
	s.mu.RLock()
	draft, exists := s.drafts[id]
	s.mu.RUnlock()

	if !exists {
		return nil, domain.ErrDraftNotFound
	}
	if s.now().After(draft.ExpiresAt) {
		return nil, domain.ErrDraftExpired
	}
	return copyDraft(draft), nil
}

// Save stores everything but the Submitting flag, which only
// BeginSubmission/EndSubmission may change.
func (s *MemorySessionStore) Save(draft *domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.drafts[draft.ID]
	if !exists {
		return domain.ErrDraftNotFound
	}
	updated := *copyDraft(*draft)
	updated.Submitting = stored.Submitting
	s.drafts[draft.ID] = updated
	return nil
}

// MarkCompleted sets only the completed flag, leaving link changes made
// during the submission alone.
func (s *MemorySessionStore) MarkCompleted(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, exists := s.drafts[id]
	if !exists {
		return domain.ErrDraftNotFound
	}
	draft.Completed = true
	s.drafts[id] = draft
	return nil
}

func (s *MemorySessionStore) BeginSubmission(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, exists := s.drafts[id]
	if !exists {
		return domain.ErrDraftNotFound
	}
	if s.now().After(draft.ExpiresAt) {
		return domain.ErrDraftExpired
	}
	if draft.Submitting {
		return domain.ErrSubmissionInProgress
	}
	draft.Submitting = true
	s.drafts[id] = draft
	return nil
}

func (s *MemorySessionStore) EndSubmission(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, exists := s.drafts[id]
	if !exists {
		return domain.ErrDraftNotFound
	}
	draft.Submitting = false
	s.drafts[id] = draft
	return nil
}

// DeleteExpired drops drafts past their expiry and reports how many went.
func (s *MemorySessionStore) DeleteExpired() (int64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, draft := range s.drafts {
		if now.After(draft.ExpiresAt) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed, nil
}

func copyDraft(draft domain.Draft) *domain.Draft {
	out := draft
	if draft.Linked != nil {
		linked := *draft.Linked
		out.Linked = &linked
	}
	return &out
}
