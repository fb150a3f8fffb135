package application

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"log"
)

var ErrStaleLinkAttempt = errors.New("bank link attempt is no longer active")

const (
	msgLinkUnavailable   = "We could not start the bank connection. Please try again."
	msgLinkNoAccounts    = "The bank connection did not return any accounts."
	msgLinkMissingSecret = "The bank connection did not complete."
)

// LinkTokenSource hands out a fresh link token for every connect attempt.
type LinkTokenSource interface {
	CreateLinkToken(ctx context.Context, clientUserID string) (string, error)
}

type LinkSession struct {
	LinkToken string `json:"link_token"`
	AttemptID string `json:"attempt_id"`
}

// LinkService drives the bank-linking flow for a draft:
// idle -> requested -> open -> idle (linked or exited).
type LinkService struct {
	sessions domain.SessionRepository
	source   LinkTokenSource
}

func NewLinkService(sessions domain.SessionRepository, source LinkTokenSource) *LinkService {
	return &LinkService{sessions: sessions, source: source}
}

// Connect always fetches a new link token. Any attempt already in progress is
// abandoned.
func (s *LinkService) Connect(ctx context.Context, draftID string) (*LinkSession, error) {
	draft, err := s.sessions.Get(draftID)
	if err != nil {
		return nil, err
	}

	attemptID := uuid.NewString()
	draft.LinkState = domain.LinkRequested
	draft.LinkAttemptID = attemptID
	if err := s.sessions.Save(draft); err != nil {
		return nil, err
	}

	linkToken, err := s.source.CreateLinkToken(ctx, draftID)
	if err != nil {
		log.Printf("Error requesting link token for draft %s: %v", draftID, err)
		if resetErr := s.reset(draftID, attemptID); resetErr != nil && !errors.Is(resetErr, ErrStaleLinkAttempt) {
			log.Printf("Error resetting link state for draft %s: %v", draftID, resetErr)
		}
		return nil, signupErrors.NewGenericError(msgLinkUnavailable)
	}

	draft, err = s.current(draftID, attemptID)
	if err != nil {
		return nil, err
	}
	draft.LinkState = domain.LinkOpen
	if err := s.sessions.Save(draft); err != nil {
		return nil, err
	}

	return &LinkSession{LinkToken: linkToken, AttemptID: attemptID}, nil
}

// Complete records the first account of a successful link.
func (s *LinkService) Complete(draftID, attemptID, publicToken string, metadata domain.LinkMetadata) (*domain.LinkedAccountToken, error) {
	draft, err := s.current(draftID, attemptID)
	if err != nil {
		return nil, err
	}
	if draft.LinkState != domain.LinkOpen {
		return nil, ErrStaleLinkAttempt
	}
	if publicToken == "" {
		return nil, signupErrors.NewGenericError(msgLinkMissingSecret)
	}
	if len(metadata.Accounts) == 0 {
		return nil, signupErrors.NewGenericError(msgLinkNoAccounts)
	}

	account := metadata.Accounts[0]
	linked := &domain.LinkedAccountToken{
		PublicToken:     publicToken,
		AccountID:       account.ID,
		AccountName:     account.Name,
		InstitutionName: metadata.Institution.Name,
	}
	draft.Linked = linked
	draft.LinkState = domain.LinkIdle
	draft.LinkAttemptID = ""
	if err := s.sessions.Save(draft); err != nil {
		return nil, err
	}
	return linked, nil
}

// Exit tears the widget down without linking anything.
func (s *LinkService) Exit(draftID, attemptID string) error {
	return s.reset(draftID, attemptID)
}

// Remove clears the linked account; the visitor falls back to the selected
// payment method.
func (s *LinkService) Remove(draftID string) error {
	draft, err := s.sessions.Get(draftID)
	if err != nil {
		return err
	}
	draft.Linked = nil
	return s.sessions.Save(draft)
}

func (s *LinkService) reset(draftID, attemptID string) error {
	draft, err := s.current(draftID, attemptID)
	if err != nil {
		return err
	}
	draft.LinkState = domain.LinkIdle
	draft.LinkAttemptID = ""
	return s.sessions.Save(draft)
}

func (s *LinkService) current(draftID, attemptID string) (*domain.Draft, error) {
	draft, err := s.sessions.Get(draftID)
	if err != nil {
		return nil, err
	}
	if attemptID == "" || draft.LinkAttemptID != attemptID {
		return nil, fmt.Errorf("%w: draft %s", ErrStaleLinkAttempt, draftID)
	}
	return draft, nil
}
