package infrastructure

import (
	"context"
	"github.com/sebuszqo/UnionSignup/internal/signup/domain"
	signupErrors "github.com/sebuszqo/UnionSignup/internal/signup/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type fakeStripe struct {
	mu    sync.Mutex
	forms []url.Values
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/tokens" {
		http.NotFound(w, r)
		return
	}
	raw, _ := io.ReadAll(r.Body)
	form, _ := url.ParseQuery(string(raw))
	f.mu.Lock()
	f.forms = append(f.forms, form)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case form.Get("card[address_zip]") == "00000":
		w.WriteHeader(http.StatusPaymentRequired)
		io.WriteString(w, `{"error":{"type":"card_error","code":"incorrect_zip","param":"card[address_zip]","message":"The zip code you supplied failed validation."}}`)
	case form.Get("bank_account[routing_number]") == "bad":
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"type":"invalid_request_error","param":"bank_account[routing_number]","message":"Routing number must have 9 digits"}}`)
	case form.Get("bank_account[country]") != "":
		io.WriteString(w, `{"id":"btok_123","object":"token","type":"bank_account"}`)
	default:
		io.WriteString(w, `{"id":"tok_123","object":"token","type":"card"}`)
	}
}

func (f *fakeStripe) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[len(f.forms)-1]
}

func newTestStripe(t *testing.T) (*StripeProcessor, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return NewStripeProcessor("sk_test_123", server.URL, server.Client()), fake
}

func TestStripeProcessor_CreateCardToken(t *testing.T) {
	processor, fake := newTestStripe(t)

	token, err := processor.CreateCardToken(context.Background(), domain.CardDetails{
		Name:       "Ada Lovelace",
		PostalCode: "10001",
		Country:    "US",
		Number:     "4242424242424242",
		ExpMonth:   "12",
		ExpYear:    "2030",
		CVC:        "123",
		Currency:   "usd",
	})

	require.NoError(t, err)
	assert.Equal(t, "tok_123", token)
	form := fake.last()
	assert.Equal(t, "Ada Lovelace", form.Get("card[name]"))
	assert.Equal(t, "usd", form.Get("card[currency]"))
	_, sentLine2 := form["card[address_line2]"]
	assert.False(t, sentLine2)
}

func TestStripeProcessor_CardErrorCarriesParam(t *testing.T) {
	processor, _ := newTestStripe(t)

	_, err := processor.CreateCardToken(context.Background(), domain.CardDetails{Name: "Ada", PostalCode: "00000"})

	pe, ok := signupErrors.AsProcessorError(err)
	require.True(t, ok)
	assert.Equal(t, "card[address_zip]", pe.Param)
	assert.Equal(t, "The zip code you supplied failed validation.", pe.Msg)
}

func TestStripeProcessor_CreateBankAccountToken(t *testing.T) {
	processor, fake := newTestStripe(t)

	token, err := processor.CreateBankAccountToken(context.Background(), domain.BankAccountDetails{
		Country:           "US",
		Currency:          "usd",
		RoutingNumber:     "110000000",
		AccountNumber:     "000123456789",
		AccountHolderName: "Ada Lovelace",
		AccountHolderType: domain.AccountHolderTypeIndividual,
	})

	require.NoError(t, err)
	assert.Equal(t, "btok_123", token)
	assert.Equal(t, "individual", fake.last().Get("bank_account[account_holder_type]"))

	_, err = processor.CreateBankAccountToken(context.Background(), domain.BankAccountDetails{Country: "US", RoutingNumber: "bad"})
	pe, ok := signupErrors.AsProcessorError(err)
	require.True(t, ok)
	assert.Equal(t, "bank_account[routing_number]", pe.Param)
}

func TestStripeProcessor_NotConfigured(t *testing.T) {
	processor := NewStripeProcessor("", "", http.DefaultClient)

	_, err := processor.CreateCardToken(context.Background(), domain.CardDetails{})
	assert.ErrorIs(t, err, ErrStripeNotConfigured)
	_, err = processor.CreateBankAccountToken(context.Background(), domain.BankAccountDetails{})
	assert.ErrorIs(t, err, ErrStripeNotConfigured)
}
