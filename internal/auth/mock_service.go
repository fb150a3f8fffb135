package auth

import "context"

type MockService struct {
	Result        *LoginResult
	Err           error
	VerifyResult  *LoginResult
	VerifyErr     error
	SessionTokens []string
}

func (m *MockService) Login(_ context.Context, _, _ string) (*LoginResult, error) {
	return m.Result, m.Err
}

func (m *MockService) VerifyTwoFactor(_ context.Context, sessionToken, _ string) (*LoginResult, error) {
	m.SessionTokens = append(m.SessionTokens, sessionToken)
	return m.VerifyResult, m.VerifyErr
}
