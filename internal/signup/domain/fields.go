package domain

const (
	FieldFirstName    = "first-name"
	FieldLastName     = "last-name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldAddressLine1 = "address-line1"
	FieldAddressLine2 = "address-line2"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZip          = "zip"

	FieldEmployerType      = "employer-type"
	FieldEmployerName      = "employer-name"
	FieldEmployerOther     = "employer-other"
	FieldJobTitle          = "job-title"
	FieldDepartment        = "department"
	FieldTotalCompensation = "total-compensation"
	FieldCurrency          = "currency"
	FieldCalculatorEnabled = "calculator-enabled"
	FieldHourlyRate        = "hourly-rate"
	FieldHoursPerWeek      = "hours-per-week"

	FieldPaymentMethod = "payment-method"

	FieldBillingName         = "billing-name"
	FieldBillingAddressLine1 = "billing-address-line1"
	FieldBillingAddressLine2 = "billing-address-line2"
	FieldBillingCity         = "billing-city"
	FieldBillingState        = "billing-state"
	FieldBillingPostalCode   = "billing-postal-code"
	FieldBillingCountry      = "billing-country"
	FieldCardNumber          = "card-number"
	FieldCardExpMonth        = "card-exp-month"
	FieldCardExpYear         = "card-exp-year"
	FieldCardCVC             = "card-cvc"

	FieldBankCountry           = "bank-country"
	FieldBankRoutingNumber     = "bank-routing-number"
	FieldBankAccountNumber     = "bank-account-number"
	FieldBankAccountHolderName = "bank-account-holder-name"

	FieldStripePaymentToken = "stripe-payment-token"
	FieldPlaidPublicToken   = "plaid-public-token"
	FieldPlaidAccountID     = "plaid-account-id"
)

const (
	EmployerTypeListed = "listed"
	EmployerTypeOther  = "other"
)

var CardFields = []string{
	FieldBillingName,
	FieldBillingAddressLine1,
	FieldBillingAddressLine2,
	FieldBillingCity,
	FieldBillingState,
	FieldBillingPostalCode,
	FieldBillingCountry,
	FieldCardNumber,
	FieldCardExpMonth,
	FieldCardExpYear,
	FieldCardCVC,
}

var BankManualFields = []string{
	FieldBankCountry,
	FieldBankRoutingNumber,
	FieldBankAccountNumber,
	FieldBankAccountHolderName,
}

// SensitiveFields are never echoed back into rendered markup or logs.
var SensitiveFields = map[string]bool{
	FieldCardNumber:        true,
	FieldCardCVC:           true,
	FieldBankAccountNumber: true,
	FieldBankRoutingNumber: true,
}

// PaymentFields lists every field owned by a payment method, across all methods.
func PaymentFields() []string {
	out := make([]string, 0, len(CardFields)+len(BankManualFields))
	out = append(out, CardFields...)
	out = append(out, BankManualFields...)
	return out
}

var allFields = map[string]bool{}

func init() {
	for _, name := range []string{
		FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldAddressLine1, FieldAddressLine2,
		FieldCity, FieldState, FieldZip, FieldEmployerType, FieldEmployerName, FieldEmployerOther,
		FieldJobTitle, FieldDepartment, FieldTotalCompensation, FieldCurrency, FieldCalculatorEnabled,
		FieldHourlyRate, FieldHoursPerWeek, FieldPaymentMethod,
	} {
		allFields[name] = true
	}
	for _, name := range PaymentFields() {
		allFields[name] = true
	}
}

// IsFormField reports whether name is an input the form renders.
func IsFormField(name string) bool {
	return allFields[name]
}
