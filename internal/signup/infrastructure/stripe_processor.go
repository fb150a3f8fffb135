package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"net/http"
)

var ErrStripeNotConfigured = errors.New("STRIPE_SECRET_KEY is not set")

// StripeProcessor creates single-use card and bank account tokens. The stripe
// client is built on first use and shared by every request afterwards.
type StripeProcessor struct {
	api *Lazy[*client.API]
}

// NewStripeProcessor takes an optional apiURL to point the client somewhere
// other than api.stripe.com (stripe-mock, tests).
func NewStripeProcessor(secretKey, apiURL string, httpClient *http.Client) *StripeProcessor {
	return &StripeProcessor{api: NewLazy(func() (*client.API, error) {
		if secretKey == "" {
			return nil, ErrStripeNotConfigured
		}
		config := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			MaxNetworkRetries: stripe.Int64(0),
		}
		if apiURL != "" {
			config.URL = stripe.String(apiURL)
		}
		api := &client.API{}
		api.Init(secretKey, &stripe.Backends{
			API:     stripe.GetBackendWithConfig(stripe.APIBackend, config),
			Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, config),
			Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, config),
		})
		return api, nil
	})}
}

func (p *StripeProcessor) CreateCardToken(ctx context.Context, card domain.CardDetails) (string, error) {
	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Name:           optional(card.Name),
			AddressLine1:   optional(card.AddressLine1),
			AddressLine2:   optional(card.AddressLine2),
			AddressCity:    optional(card.City),
			AddressState:   optional(card.State),
			AddressZip:     optional(card.PostalCode),
			AddressCountry: optional(card.Country),
			Number:         optional(card.Number),
			ExpMonth:       optional(card.ExpMonth),
			ExpYear:        optional(card.ExpYear),
			CVC:            optional(card.CVC),
			Currency:       optional(card.Currency),
		},
	}
	return p.createToken(ctx, params)
}

func (p *StripeProcessor) CreateBankAccountToken(ctx context.Context, account domain.BankAccountDetails) (string, error) {
	params := &stripe.TokenParams{
		BankAccount: &stripe.BankAccountParams{
			Country:           optional(account.Country),
			Currency:          optional(account.Currency),
			RoutingNumber:     optional(account.RoutingNumber),
			AccountNumber:     optional(account.AccountNumber),
			AccountHolderName: optional(account.AccountHolderName),
			AccountHolderType: optional(account.AccountHolderType),
		},
	}
	return p.createToken(ctx, params)
}

func (p *StripeProcessor) createToken(ctx context.Context, params *stripe.TokenParams) (string, error) {
	api, err := p.api.Get()
	if err != nil {
		return "", err
	}
	params.Context = ctx

	token, err := api.Tokens.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return "", &signupErrors.ProcessorError{Param: stripeErr.Param, Msg: stripeErr.Msg}
		}
		return "", fmt.Errorf("stripe token request failed: %w", err)
	}
	return token.ID, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return stripe.String(value)
}
