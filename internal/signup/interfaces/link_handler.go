package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/sebuszqo/UnionSignup/internal/signup/application"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"log"
	"net/http"
)

type LinkServiceInterface interface {
	Connect(ctx context.Context, draftID string) (*application.LinkSession, error)
	Complete(draftID, attemptID, publicToken string, metadata domain.LinkMetadata) (*domain.LinkedAccountToken, error)
	Exit(draftID, attemptID string) error
	Remove(draftID string) error
}

type LinkHandler struct {
	links        LinkServiceInterface
	sessions     domain.SessionRepository
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewLinkHandler(
	links LinkServiceInterface,
	sessions domain.SessionRepository,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *LinkHandler {
	if links == nil || sessions == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &LinkHandler{
		links:        links,
		sessions:     sessions,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

func (h *LinkHandler) HandleLinkToken(w http.ResponseWriter, r *http.Request) {
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	session, err := h.links.Connect(r.Context(), draft.ID)
	if err != nil {
		h.handleLinkError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   session,
	})
}

func (h *LinkHandler) HandleLinked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttemptID   string              `json:"attempt_id"`
		PublicToken string              `json:"public_token"`
		Metadata    domain.LinkMetadata `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AttemptID == "" {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	linked, err := h.links.Complete(draft.ID, req.AttemptID, req.PublicToken, req.Metadata)
	if err != nil {
		h.handleLinkError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Bank account connected.",
		"data": map[string]string{
			"account": linked.DisplayName(),
		},
	})
}

func (h *LinkHandler) HandleLinkExit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttemptID string `json:"attempt_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AttemptID == "" {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft, ok := h.draft(w, r)
	if !ok {
		return
	}

	if err := h.links.Exit(draft.ID, req.AttemptID); err != nil {
		h.handleLinkError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
	})
}

// HandleRemoveBank is a plain form post from the signup page.
func (h *LinkHandler) HandleRemoveBank(w http.ResponseWriter, r *http.Request) {
	draft, err := existingDraft(r, h.sessions)
	if err == nil {
		if err := h.links.Remove(draft.ID); err != nil {
			log.Printf("Error removing linked account for draft %s: %v", draft.ID, err)
		}
	}
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}

func (h *LinkHandler) draft(w http.ResponseWriter, r *http.Request) (*domain.Draft, bool) {
	draft, err := existingDraft(r, h.sessions)
	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) || errors.Is(err, domain.ErrDraftExpired) {
			h.respondError(w, http.StatusNotFound, "Signup session not found")
			return nil, false
		}
		log.Printf("Error loading signup session: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return draft, true
}

func (h *LinkHandler) handleLinkError(w http.ResponseWriter, err error) {
	if genericErr, ok := signupErrors.AsGenericError(err); ok {
		h.respondError(w, http.StatusBadGateway, genericErr.Msg)
		return
	}
	if errors.Is(err, application.ErrStaleLinkAttempt) {
		h.respondError(w, http.StatusConflict, "Bank connection attempt is no longer active")
		return
	}
	if errors.Is(err, domain.ErrDraftNotFound) || errors.Is(err, domain.ErrDraftExpired) {
		h.respondError(w, http.StatusNotFound, "Signup session not found")
		return
	}
	log.Printf("Error in bank link flow: %v", err)
	h.respondError(w, http.StatusInternalServerError, "Internal server error")
}
