package application

import (
	"context"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
)

type MockProcessor struct {
	CardToken string
	BankToken string
	Err       error
	CardCalls []domain.CardDetails
	BankCalls []domain.BankAccountDetails
}

func (m *MockProcessor) CreateCardToken(_ context.Context, card domain.CardDetails) (string, error) {
	m.CardCalls = append(m.CardCalls, card)
	if m.Err != nil {
		return "", m.Err
	}
	return m.CardToken, nil
}

func (m *MockProcessor) CreateBankAccountToken(_ context.Context, account domain.BankAccountDetails) (string, error) {
	m.BankCalls = append(m.BankCalls, account)
	if m.Err != nil {
		return "", m.Err
	}
	return m.BankToken, nil
}

type MockSignupBackend struct {
	Err    error
	Bodies []*domain.FormPayload
	Keys   []string
	// OnSubmit runs while the submission is in flight.
	OnSubmit func()
}

func (m *MockSignupBackend) SubmitSignup(_ context.Context, body *domain.FormPayload, idempotencyKey string) error {
	m.Bodies = append(m.Bodies, body)
	m.Keys = append(m.Keys, idempotencyKey)
	if m.OnSubmit != nil {
		m.OnSubmit()
	}
	return m.Err
}

type MockLinkTokenSource struct {
	Tokens []string
	Err    error
	Calls  int
}

func (m *MockLinkTokenSource) CreateLinkToken(_ context.Context, _ string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Tokens) == 0 {
		return "link-sandbox-token", nil
	}
	token := m.Tokens[0]
	m.Tokens = m.Tokens[1:]
	return token, nil
}
