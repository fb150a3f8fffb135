package domain

import (
	"errors"
	"time"
)

type PaymentMethod string

const (
	PaymentBankManual PaymentMethod = "bank-manual"
	PaymentCard       PaymentMethod = "card"
	PaymentBankLinked PaymentMethod = "bank-linked"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case PaymentBankManual, PaymentCard, PaymentBankLinked:
		return PaymentMethod(raw), nil
	case "":
		return PaymentBankManual, nil
	}
	return "", ErrUnknownPaymentMethod
}

// Fields returns the form fields owned by the method. The linked method owns
// none: its values come from the LinkedAccountToken.
func (m PaymentMethod) Fields() []string {
	switch m {
	case PaymentCard:
		return CardFields
	case PaymentBankManual:
		return BankManualFields
	}
	return nil
}

// LinkedAccountToken is produced by a successful bank-linking flow.
type LinkedAccountToken struct {
	PublicToken     string `json:"public_token"`
	AccountID       string `json:"account_id"`
	AccountName     string `json:"account_name"`
	InstitutionName string `json:"institution_name"`
}

// DisplayName is what the form shows next to the "Remove" button.
func (t LinkedAccountToken) DisplayName() string {
	if t.InstitutionName == "" {
		return t.AccountName
	}
	if t.AccountName == "" {
		return t.InstitutionName
	}
	return t.InstitutionName + " - " + t.AccountName
}

type LinkMetadata struct {
	Institution struct {
		Name string `json:"name"`
	} `json:"institution"`
	Accounts []LinkAccount `json:"accounts"`
}

type LinkAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Field struct {
	Name  string
	Value string
}

// TokenResult is a successful tokenization: the token fields plus whatever
// remained in the payload after the strategy spliced its inputs.
type TokenResult struct {
	Token     []Field
	Remainder *FormPayload
}

type CardDetails struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	Number       string
	ExpMonth     string
	ExpYear      string
	CVC          string
	Currency     string
}

const AccountHolderTypeIndividual = "individual"

type BankAccountDetails struct {
	Country           string
	Currency          string
	RoutingNumber     string
	AccountNumber     string
	AccountHolderName string
	AccountHolderType string
}

type LinkState string

const (
	LinkIdle      LinkState = "idle"
	LinkRequested LinkState = "requested"
	LinkOpen      LinkState = "open"
)

// Draft is the per-visitor state that outlives a single request: the link
// flow, the linked account and the loading flag.
type Draft struct {
	ID            string
	LinkState     LinkState
	LinkAttemptID string
	Linked        *LinkedAccountToken
	Submitting    bool
	Completed     bool
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// EffectiveMethod forces bank-linked while a linked account is present.
func (d *Draft) EffectiveMethod(selected PaymentMethod) PaymentMethod {
	if d != nil && d.Linked != nil {
		return PaymentBankLinked
	}
	return selected
}

type SessionRepository interface {
	Create(ttl time.Duration) (*Draft, error)
	Get(id string) (*Draft, error)
	Save(draft *Draft) error
	MarkCompleted(id string) error
	BeginSubmission(id string) error
	EndSubmission(id string) error
}

var (
	ErrDraftNotFound        = errors.New("signup session not found")
	ErrDraftExpired         = errors.New("signup session expired")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrAlreadyCompleted     = errors.New("signup already completed")
)
