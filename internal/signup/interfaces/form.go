package interfaces

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	"html"
	"net/url"
	"strings"
)

const optionalSuffix = " (optional)"

// FormState is what a render starts from. KeepSensitive echoes card and bank
// numbers back, which only a method switch or a recalculation may ask for.
type FormState struct {
	Values        map[string]string
	Draft         *domain.Draft
	InvalidField  string
	FieldMessage  string
	Alert         string
	KeepSensitive bool
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type FieldView struct {
	Name         string
	Label        string
	Type         string
	Value        string
	Autocomplete string
	Options      []Option
	Required     bool
	Invalid      bool
	Autofocus    bool
	Message      string
}

type Section struct {
	Title  string
	Fields []FieldView
}

type LinkedView struct {
	DisplayName string
}

// FormView is the immutable view model the signup template renders.
// Retained carries values of inputs that are not shown right now, as hidden
// inputs, so switching back restores them. They never reach the payload.
type FormView struct {
	Personal          Section
	Employment        Section
	Calculator        Section
	Card              Section
	Bank              Section
	Methods           []Option
	PaymentMethod     domain.PaymentMethod
	MethodInvalid     bool
	MethodMessage     string
	CalculatorEnabled bool
	Dues              string
	Linked            *LinkedView
	Alert             string
	Submitting        bool
	Retained          []FieldView
}

func (v FormView) ShowCard() bool {
	return v.PaymentMethod == domain.PaymentCard
}

func (v FormView) ShowBank() bool {
	return v.PaymentMethod == domain.PaymentBankManual
}

type fieldDef struct {
	name         string
	label        string
	kind         string
	autocomplete string
	options      []Option
}

var personalFields = []fieldDef{
	{name: domain.FieldFirstName, label: "First name", kind: "text", autocomplete: "given-name"},
	{name: domain.FieldLastName, label: "Last name", kind: "text", autocomplete: "family-name"},
	{name: domain.FieldEmail, label: "Email", kind: "email", autocomplete: "email"},
	{name: domain.FieldPhone, label: "Phone", kind: "tel", autocomplete: "tel"},
	{name: domain.FieldAddressLine1, label: "Address", kind: "text", autocomplete: "address-line1"},
	{name: domain.FieldAddressLine2, label: "Apartment, suite, etc.", kind: "text", autocomplete: "address-line2"},
	{name: domain.FieldCity, label: "City", kind: "text", autocomplete: "address-level2"},
	{name: domain.FieldState, label: "State / Province", kind: "text", autocomplete: "address-level1"},
	{name: domain.FieldZip, label: "ZIP / Postal code", kind: "text", autocomplete: "postal-code"},
}

var (
	employerTypeField = fieldDef{name: domain.FieldEmployerType, label: "Employer", kind: "select", options: []Option{
		{Value: domain.EmployerTypeListed, Label: "My employer is listed"},
		{Value: domain.EmployerTypeOther, Label: "Other employer"},
	}}
	employerNameField  = fieldDef{name: domain.FieldEmployerName, label: "Employer name", kind: "text", autocomplete: "organization"}
	employerOtherField = fieldDef{name: domain.FieldEmployerOther, label: "Employer name and location", kind: "text"}
	jobFields          = []fieldDef{
		{name: domain.FieldJobTitle, label: "Job title", kind: "text", autocomplete: "organization-title"},
		{name: domain.FieldDepartment, label: "Department", kind: "text"},
		{name: domain.FieldTotalCompensation, label: "Total annual compensation", kind: "text"},
		{name: domain.FieldCurrency, label: "Currency", kind: "select", options: []Option{
			{Value: "usd", Label: "USD"},
			{Value: "cad", Label: "CAD"},
		}},
	}
	calculatorFields = []fieldDef{
		{name: domain.FieldHourlyRate, label: "Hourly rate", kind: "text"},
		{name: domain.FieldHoursPerWeek, label: "Hours per week", kind: "text"},
	}
)

var cardFields = []fieldDef{
	{name: domain.FieldBillingName, label: "Name on card", kind: "text", autocomplete: "cc-name"},
	{name: domain.FieldBillingAddressLine1, label: "Billing address", kind: "text", autocomplete: "billing address-line1"},
	{name: domain.FieldBillingAddressLine2, label: "Billing address line 2", kind: "text", autocomplete: "billing address-line2"},
	{name: domain.FieldBillingCity, label: "Billing city", kind: "text", autocomplete: "billing address-level2"},
	{name: domain.FieldBillingState, label: "Billing state / province", kind: "text", autocomplete: "billing address-level1"},
	{name: domain.FieldBillingPostalCode, label: "Billing postal code", kind: "text", autocomplete: "billing postal-code"},
	{name: domain.FieldBillingCountry, label: "Billing country", kind: "text", autocomplete: "billing country"},
	{name: domain.FieldCardNumber, label: "Card number", kind: "text", autocomplete: "cc-number"},
	{name: domain.FieldCardExpMonth, label: "Expiry month", kind: "text", autocomplete: "cc-exp-month"},
	{name: domain.FieldCardExpYear, label: "Expiry year", kind: "text", autocomplete: "cc-exp-year"},
	{name: domain.FieldCardCVC, label: "Security code", kind: "text", autocomplete: "cc-csc"},
}

var bankFields = []fieldDef{
	{name: domain.FieldBankCountry, label: "Bank country", kind: "select", options: []Option{
		{Value: "US", Label: "United States"},
		{Value: "CA", Label: "Canada"},
	}},
	{name: domain.FieldBankRoutingNumber, label: "Routing number", kind: "text"},
	{name: domain.FieldBankAccountNumber, label: "Account number", kind: "text"},
	{name: domain.FieldBankAccountHolderName, label: "Account holder name", kind: "text", autocomplete: "name"},
}

var methodOptions = []Option{
	{Value: string(domain.PaymentBankManual), Label: "Bank account"},
	{Value: string(domain.PaymentCard), Label: "Credit or debit card"},
	{Value: string(domain.PaymentBankLinked), Label: "Connect your bank"},
}

var messagePolicy = bluemonday.StrictPolicy()

// sanitizeMessage strips any markup a processor or backend put in a message.
// The template escapes the result again, so entities are decoded here.
func sanitizeMessage(msg string) string {
	return strings.TrimSpace(html.UnescapeString(messagePolicy.Sanitize(msg)))
}

// BuildForm turns a state snapshot into the view model. It has no side
// effects.
func BuildForm(state FormState, req domain.Requirements) FormView {
	values := withCalculator(state.Values)
	build := func(def fieldDef) FieldView {
		return buildField(def, values, state, req)
	}

	view := FormView{
		Personal:          Section{Title: "About you"},
		Employment:        Section{Title: "Your job"},
		Calculator:        Section{Title: "Hourly calculator"},
		Card:              Section{Title: "Card details"},
		Bank:              Section{Title: "Bank account"},
		CalculatorEnabled: calculatorEnabled(values),
		Dues:              domain.FormatDues(values[domain.FieldTotalCompensation], values[domain.FieldCurrency]),
		Submitting:        state.Draft != nil && state.Draft.Submitting,
	}
	if state.Alert != "" {
		view.Alert = sanitizeMessage(state.Alert)
	}

	for _, def := range personalFields {
		view.Personal.Fields = append(view.Personal.Fields, build(def))
	}
	for _, def := range employmentDefs(values) {
		view.Employment.Fields = append(view.Employment.Fields, build(def))
	}
	for _, def := range calculatorFields {
		view.Calculator.Fields = append(view.Calculator.Fields, build(def))
	}
	for _, def := range cardFields {
		view.Card.Fields = append(view.Card.Fields, build(def))
	}
	for _, def := range bankFields {
		view.Bank.Fields = append(view.Bank.Fields, build(def))
	}

	selected, err := domain.ParsePaymentMethod(values[domain.FieldPaymentMethod])
	if err != nil {
		selected = domain.PaymentBankManual
	}
	view.PaymentMethod = state.Draft.EffectiveMethod(selected)
	for _, option := range methodOptions {
		option.Selected = option.Value == string(view.PaymentMethod)
		view.Methods = append(view.Methods, option)
	}
	if state.InvalidField == domain.FieldPaymentMethod {
		view.MethodInvalid = true
		view.MethodMessage = sanitizeMessage(state.FieldMessage)
	}
	if state.Draft != nil && state.Draft.Linked != nil {
		view.Linked = &LinkedView{DisplayName: state.Draft.Linked.DisplayName()}
	}
	if state.InvalidField != "" && !view.MethodInvalid && !view.showsField(state.InvalidField) && view.Alert == "" {
		view.Alert = sanitizeMessage(state.FieldMessage)
	}

	hidden := hiddenEmployerDefs(values)
	if !view.CalculatorEnabled {
		hidden = append(hidden, calculatorFields...)
	}
	if !view.ShowCard() {
		hidden = append(hidden, cardFields...)
	}
	if !view.ShowBank() {
		hidden = append(hidden, bankFields...)
	}
	for _, def := range hidden {
		if field := build(def); field.Value != "" {
			view.Retained = append(view.Retained, field)
		}
	}
	return view
}

// showsField reports whether name is rendered as a visible input that can
// carry its own message.
func (v FormView) showsField(name string) bool {
	sections := []Section{v.Personal, v.Employment}
	if v.CalculatorEnabled {
		sections = append(sections, v.Calculator)
	}
	if v.ShowCard() {
		sections = append(sections, v.Card)
	}
	if v.ShowBank() {
		sections = append(sections, v.Bank)
	}
	for _, section := range sections {
		for _, field := range section.Fields {
			if field.Name == name {
				return true
			}
		}
	}
	return false
}

func hiddenEmployerDefs(values map[string]string) []fieldDef {
	switch values[domain.FieldEmployerType] {
	case domain.EmployerTypeListed:
		return []fieldDef{employerOtherField}
	case domain.EmployerTypeOther:
		return []fieldDef{employerNameField}
	}
	return []fieldDef{employerNameField, employerOtherField}
}

func buildField(def fieldDef, values map[string]string, state FormState, req domain.Requirements) FieldView {
	field := FieldView{
		Name:         def.name,
		Label:        def.label,
		Type:         def.kind,
		Autocomplete: def.autocomplete,
		Required:     req.Required(def.name),
	}
	if !field.Required {
		field.Label += optionalSuffix
	}
	if state.KeepSensitive || !domain.SensitiveFields[def.name] {
		field.Value = values[def.name]
	}
	for _, option := range def.options {
		option.Selected = option.Value == field.Value
		field.Options = append(field.Options, option)
	}
	if state.InvalidField == def.name {
		field.Invalid = true
		field.Autofocus = true
		field.Message = sanitizeMessage(state.FieldMessage)
	}
	return field
}

func employmentDefs(values map[string]string) []fieldDef {
	defs := []fieldDef{employerTypeField}
	switch values[domain.FieldEmployerType] {
	case domain.EmployerTypeListed:
		defs = append(defs, employerNameField)
	case domain.EmployerTypeOther:
		defs = append(defs, employerOtherField)
	}
	return append(defs, jobFields...)
}

func calculatorEnabled(values map[string]string) bool {
	return values[domain.FieldCalculatorEnabled] != ""
}

// withCalculator back-fills total compensation when the calculator is on and
// both inputs are numeric. The input map is not modified.
func withCalculator(values map[string]string) map[string]string {
	out := make(map[string]string, len(values)+1)
	for name, value := range values {
		out[name] = value
	}
	if !calculatorEnabled(out) {
		return out
	}
	if total, ok := domain.AnnualCompensation(out[domain.FieldHourlyRate], out[domain.FieldHoursPerWeek]); ok {
		out[domain.FieldTotalCompensation] = total
	}
	return out
}

// VisibleFields lists the inputs the form currently shows, in form order.
func VisibleFields(values map[string]string) []string {
	var names []string
	for _, def := range personalFields {
		names = append(names, def.name)
	}
	for _, def := range employmentDefs(values) {
		names = append(names, def.name)
	}
	if calculatorEnabled(values) {
		names = append(names, domain.FieldCalculatorEnabled)
		for _, def := range calculatorFields {
			names = append(names, def.name)
		}
	}
	names = append(names, domain.FieldPaymentMethod)

	method, _ := domain.ParsePaymentMethod(values[domain.FieldPaymentMethod])
	return append(names, method.Fields()...)
}

// BuildPayload collects the visible fields of a submitted form, in form order.
// Hidden inputs never make it into the payload.
func BuildPayload(values map[string]string) *domain.FormPayload {
	values = withCalculator(values)
	payload := domain.NewFormPayload()
	for _, name := range VisibleFields(values) {
		payload.Set(name, strings.TrimSpace(values[name]))
	}
	return payload
}

// formValues flattens submitted form data, keeping only known inputs.
func formValues(form url.Values) map[string]string {
	values := make(map[string]string)
	for name := range form {
		if domain.IsFormField(name) {
			values[name] = form.Get(name)
		}
	}
	return values
}
