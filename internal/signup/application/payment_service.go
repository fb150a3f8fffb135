package application

import (
	"context"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"log"
)

const msgProcessorUnavailable = "We could not reach the payment processor. Please try again."

// Processor exchanges payment details for a single-use token.
type Processor interface {
	CreateCardToken(ctx context.Context, card domain.CardDetails) (string, error)
	CreateBankAccountToken(ctx context.Context, account domain.BankAccountDetails) (string, error)
}

// Tokenizer is implemented once per payment method. It returns a TokenResult,
// a *FieldError or a *GenericError.
type Tokenizer interface {
	Tokenize(ctx context.Context, payload *domain.Splicer) (domain.TokenResult, error)
}

var cardParams = map[string]string{
	"card[name]":            domain.FieldBillingName,
	"card[address_line1]":   domain.FieldBillingAddressLine1,
	"card[address_line2]":   domain.FieldBillingAddressLine2,
	"card[address_city]":    domain.FieldBillingCity,
	"card[address_zip]":     domain.FieldBillingPostalCode,
	"card[address_country]": domain.FieldBillingCountry,
	"card[number]":          domain.FieldCardNumber,
	"card[exp_month]":       domain.FieldCardExpMonth,
	"card[exp_year]":        domain.FieldCardExpYear,
	"card[cvc]":             domain.FieldCardCVC,
	"currency":              domain.FieldCurrency,
}

var bankParams = map[string]string{
	"bank_account[country]":             domain.FieldBankCountry,
	"bank_account[currency]":            domain.FieldCurrency,
	"bank_account[routing_number]":      domain.FieldBankRoutingNumber,
	"bank_account[account_number]":      domain.FieldBankAccountNumber,
	"bank_account[account_holder_name]": domain.FieldBankAccountHolderName,
}

type CardTokenizer struct {
	processor Processor
}

func NewCardTokenizer(processor Processor) *CardTokenizer {
	return &CardTokenizer{processor: processor}
}

func (t *CardTokenizer) Tokenize(ctx context.Context, payload *domain.Splicer) (domain.TokenResult, error) {
	splice := func(name string) string {
		value, _ := payload.Splice(name)
		return value
	}
	card := domain.CardDetails{
		Name:         splice(domain.FieldBillingName),
		AddressLine1: splice(domain.FieldBillingAddressLine1),
		AddressLine2: splice(domain.FieldBillingAddressLine2),
		City:         splice(domain.FieldBillingCity),
		State:        splice(domain.FieldBillingState),
		PostalCode:   splice(domain.FieldBillingPostalCode),
		Country:      splice(domain.FieldBillingCountry),
		Number:       splice(domain.FieldCardNumber),
		ExpMonth:     splice(domain.FieldCardExpMonth),
		ExpYear:      splice(domain.FieldCardExpYear),
		CVC:          splice(domain.FieldCardCVC),
		Currency:     payload.Value(domain.FieldCurrency),
	}

	tokenID, err := t.processor.CreateCardToken(ctx, card)
	if err != nil {
		return domain.TokenResult{}, processorFailure("card", cardParams, err)
	}

	return domain.TokenResult{
		Token:     []domain.Field{{Name: domain.FieldStripePaymentToken, Value: tokenID}},
		Remainder: payload.Remainder(),
	}, nil
}

type BankTokenizer struct {
	processor Processor
}

func NewBankTokenizer(processor Processor) *BankTokenizer {
	return &BankTokenizer{processor: processor}
}

func (t *BankTokenizer) Tokenize(ctx context.Context, payload *domain.Splicer) (domain.TokenResult, error) {
	splice := func(name string) string {
		value, _ := payload.Splice(name)
		return value
	}
	account := domain.BankAccountDetails{
		Country:           splice(domain.FieldBankCountry),
		RoutingNumber:     splice(domain.FieldBankRoutingNumber),
		AccountNumber:     splice(domain.FieldBankAccountNumber),
		AccountHolderName: splice(domain.FieldBankAccountHolderName),
		AccountHolderType: domain.AccountHolderTypeIndividual,
		Currency:          payload.Value(domain.FieldCurrency),
	}

	tokenID, err := t.processor.CreateBankAccountToken(ctx, account)
	if err != nil {
		return domain.TokenResult{}, processorFailure("bank account", bankParams, err)
	}

	return domain.TokenResult{
		Token:     []domain.Field{{Name: domain.FieldStripePaymentToken, Value: tokenID}},
		Remainder: payload.Remainder(),
	}, nil
}

// LinkedTokenizer skips the processor: the bank-linking flow already produced
// a token.
type LinkedTokenizer struct {
	account domain.LinkedAccountToken
}

func NewLinkedTokenizer(account domain.LinkedAccountToken) *LinkedTokenizer {
	return &LinkedTokenizer{account: account}
}

func (t *LinkedTokenizer) Tokenize(_ context.Context, payload *domain.Splicer) (domain.TokenResult, error) {
	return domain.TokenResult{
		Token: []domain.Field{
			{Name: domain.FieldPlaidPublicToken, Value: t.account.PublicToken},
			{Name: domain.FieldPlaidAccountID, Value: t.account.AccountID},
		},
		Remainder: payload.Remainder(),
	}, nil
}

func processorFailure(kind string, params map[string]string, err error) error {
	if pe, ok := signupErrors.AsProcessorError(err); ok {
		return signupErrors.MapParam(params, pe.Param, pe.Msg)
	}
	log.Printf("Error creating %s token: %v", kind, err)
	return signupErrors.NewGenericError(msgProcessorUnavailable)
}
