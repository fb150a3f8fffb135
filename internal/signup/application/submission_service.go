package application

import (
	"context"
	"fmt"
	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"log"
)

const (
	msgInvalidEmail         = "Please enter a valid email address."
	msgChoosePaymentMethod  = "Please choose a payment method."
	msgConnectBankFirst     = "Connect a bank account or choose another payment method."
	msgBackendUnavailable   = "We could not submit your application. Please try again."
	msgBackendRejectedNoMsg = "Your application could not be accepted."
)

// SignupBackend receives the assembled, token-bearing body.
type SignupBackend interface {
	SubmitSignup(ctx context.Context, body *domain.FormPayload, idempotencyKey string) error
}

type SubmissionService struct {
	sessions     domain.SessionRepository
	card         Tokenizer
	bank         Tokenizer
	backend      SignupBackend
	requirements domain.Requirements
}

func NewSubmissionService(sessions domain.SessionRepository, processor Processor, backend SignupBackend, requirements domain.Requirements) *SubmissionService {
	return &SubmissionService{
		sessions:     sessions,
		card:         NewCardTokenizer(processor),
		bank:         NewBankTokenizer(processor),
		backend:      backend,
		requirements: requirements,
	}
}

// Submit runs one submission attempt for the draft: validate, tokenize, assemble
// and post. The draft's loading flag is held for the whole attempt and always
// released. Field and generic failures come back as *FieldError and
// *GenericError; anything else is a session problem.
func (s *SubmissionService) Submit(ctx context.Context, draftID string, payload *domain.FormPayload) error {
	if err := s.sessions.BeginSubmission(draftID); err != nil {
		return err
	}
	defer func() {
		if err := s.sessions.EndSubmission(draftID); err != nil {
			log.Printf("Error clearing submission flag for draft %s: %v", draftID, err)
		}
	}()

	draft, err := s.sessions.Get(draftID)
	if err != nil {
		return err
	}
	if draft.Completed {
		return domain.ErrAlreadyCompleted
	}

	selected, err := domain.ParsePaymentMethod(payload.Get(domain.FieldPaymentMethod))
	if err != nil {
		return signupErrors.NewFieldError(domain.FieldPaymentMethod, msgChoosePaymentMethod)
	}
	method := draft.EffectiveMethod(selected)

	if err := s.Validate(payload, method); err != nil {
		return err
	}

	tokenizer, err := s.tokenizerFor(method, draft)
	if err != nil {
		return err
	}

	result, err := tokenizer.Tokenize(ctx, domain.NewSplicer(payload))
	if err != nil {
		return err
	}

	body := assembleBody(result, method)
	if err := s.backend.SubmitSignup(ctx, body, uuid.NewString()); err != nil {
		return backendFailure(err)
	}

	if err := s.sessions.MarkCompleted(draftID); err != nil {
		// backend accepted the member, a failed save is only logged
		log.Printf("Error saving completed draft %s: %v", draftID, err)
	}
	return nil
}

// Validate applies the required-field list and the email format check. Fields
// owned by an inactive payment method are skipped since they are not sent.
func (s *SubmissionService) Validate(payload *domain.FormPayload, method domain.PaymentMethod) error {
	inactive := inactiveFields(method)
	for _, name := range payload.Names() {
		if inactive[name] || !s.requirements.Required(name) {
			continue
		}
		if payload.Get(name) == "" {
			return signupErrors.NewFieldError(name, signupErrors.MsgValueMissing)
		}
	}

	if email := payload.Get(domain.FieldEmail); email != "" {
		if err := checkmail.ValidateFormat(email); err != nil {
			return signupErrors.NewFieldError(domain.FieldEmail, msgInvalidEmail)
		}
	}
	return nil
}

func (s *SubmissionService) tokenizerFor(method domain.PaymentMethod, draft *domain.Draft) (Tokenizer, error) {
	switch method {
	case domain.PaymentCard:
		return s.card, nil
	case domain.PaymentBankManual:
		return s.bank, nil
	case domain.PaymentBankLinked:
		if draft.Linked == nil {
			return nil, signupErrors.NewFieldError(domain.FieldPaymentMethod, msgConnectBankFirst)
		}
		return NewLinkedTokenizer(*draft.Linked), nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPaymentMethod, method)
}

func inactiveFields(active domain.PaymentMethod) map[string]bool {
	out := make(map[string]bool)
	for _, method := range []domain.PaymentMethod{domain.PaymentCard, domain.PaymentBankManual, domain.PaymentBankLinked} {
		if method == active {
			continue
		}
		for _, name := range method.Fields() {
			out[name] = true
		}
	}
	return out
}

// assembleBody drops every payment field left in the remainder, whichever
// method owns it, then appends the token fields.
func assembleBody(result domain.TokenResult, method domain.PaymentMethod) *domain.FormPayload {
	splicer := domain.NewSplicer(result.Remainder)
	for _, name := range domain.PaymentFields() {
		splicer.Splice(name)
	}
	body := splicer.Remainder()
	body.Set(domain.FieldPaymentMethod, string(method))
	for _, field := range result.Token {
		body.Set(field.Name, field.Value)
	}
	return body
}

func backendFailure(err error) error {
	be, ok := signupErrors.AsBackendError(err)
	if !ok {
		log.Printf("Error submitting signup: %v", err)
		return signupErrors.NewGenericError(msgBackendUnavailable)
	}
	log.Printf("Signup rejected by backend (status %d, param %q): %s", be.StatusCode, be.Param, be.Msg)
	msg := be.Msg
	if msg == "" {
		msg = msgBackendRejectedNoMsg
	}
	if be.Param != "" && domain.IsFormField(be.Param) {
		return signupErrors.NewFieldError(be.Param, msg)
	}
	return signupErrors.NewGenericError(msg)
}
