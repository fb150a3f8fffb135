package interfaces

import (
	"context"
	"errors"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"log"
	"net/http"
	"time"
)

const (
	sessionCookieName = "signup_session"

	msgSubmissionInProgress = "Your application is already being submitted. Please wait."
	msgSessionExpired       = "Your session expired. Please review the form and submit again."
	msgInternalError        = "Something went wrong. Please try again."
)

type SubmissionServiceInterface interface {
	Submit(ctx context.Context, draftID string, payload *domain.FormPayload) error
}

type SignupHandler struct {
	submissions   SubmissionServiceInterface
	sessions      domain.SessionRepository
	requirements  domain.Requirements
	pages         *Pages
	sessionTTL    time.Duration
	secureCookies bool
}

func NewSignupHandler(
	submissions SubmissionServiceInterface,
	sessions domain.SessionRepository,
	requirements domain.Requirements,
	pages *Pages,
	sessionTTL time.Duration,
	secureCookies bool,
) *SignupHandler {
	if submissions == nil || sessions == nil || pages == nil {
		panic("Services and pages must not be nil")
	}
	return &SignupHandler{
		submissions:   submissions,
		sessions:      sessions,
		requirements:  requirements,
		pages:         pages,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (h *SignupHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	draft, err := h.draftFromRequest(w, r)
	if err != nil {
		log.Printf("Error loading signup session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if draft.Completed {
		h.pages.RenderSuccess(w)
		return
	}
	h.pages.RenderSignup(w, http.StatusOK, BuildForm(FormState{Draft: draft}, h.requirements))
}

func (h *SignupHandler) HandleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	draft, err := h.draftFromRequest(w, r)
	if err != nil {
		log.Printf("Error loading signup session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	state := FormState{Values: formValues(r.PostForm), Draft: draft}
	if r.PostForm.Get("action") != "" {
		state.KeepSensitive = true
		h.pages.RenderSignup(w, http.StatusOK, BuildForm(state, h.requirements))
		return
	}

	err = h.submissions.Submit(r.Context(), draft.ID, BuildPayload(state.Values))
	if err == nil || errors.Is(err, domain.ErrAlreadyCompleted) {
		h.pages.RenderSuccess(w)
		return
	}

	status := http.StatusUnprocessableEntity
	if fieldErr, ok := signupErrors.AsFieldError(err); ok {
		state.InvalidField = fieldErr.Field
		state.FieldMessage = fieldErr.Msg
	} else if genericErr, ok := signupErrors.AsGenericError(err); ok {
		state.Alert = genericErr.Msg
	} else if errors.Is(err, domain.ErrSubmissionInProgress) {
		status = http.StatusConflict
		state.Alert = msgSubmissionInProgress
	} else if errors.Is(err, domain.ErrDraftNotFound) || errors.Is(err, domain.ErrDraftExpired) {
		status = http.StatusConflict
		state.Alert = msgSessionExpired
	} else {
		log.Printf("Error submitting signup for draft %s: %v", draft.ID, err)
		status = http.StatusInternalServerError
		state.Alert = msgInternalError
	}

	if current, err := h.sessions.Get(draft.ID); err == nil {
		state.Draft = current
	}
	h.pages.RenderSignup(w, status, BuildForm(state, h.requirements))
}

// draftFromRequest resumes the visitor's draft, or starts a new one when the
// cookie is missing, unknown or expired.
func (h *SignupHandler) draftFromRequest(w http.ResponseWriter, r *http.Request) (*domain.Draft, error) {
	return resumeDraft(w, r, h.sessions, h.sessionTTL, h.secureCookies)
}

func resumeDraft(w http.ResponseWriter, r *http.Request, sessions domain.SessionRepository, ttl time.Duration, secure bool) (*domain.Draft, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		draft, err := sessions.Get(cookie.Value)
		if err == nil {
			return draft, nil
		}
		if !errors.Is(err, domain.ErrDraftNotFound) && !errors.Is(err, domain.ErrDraftExpired) {
			return nil, err
		}
	}

	draft, err := sessions.Create(ttl)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    draft.ID,
		Path:     "/",
		Expires:  draft.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return draft, nil
}

// existingDraft is for JSON endpoints, which never start a session.
func existingDraft(r *http.Request, sessions domain.SessionRepository) (*domain.Draft, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, domain.ErrDraftNotFound
	}
	return sessions.Get(cookie.Value)
}
