package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"github.com/plaid/plaid-go/v20/plaid"
	"net/http"
	"strings"
)

var ErrPlaidNotConfigured = errors.New("PLAID_CLIENT_ID and PLAID_SECRET must both be set")

// PlaidLinkSource creates link tokens straight from Plaid, for deployments
// where the backend does not expose its own link-token endpoint.
type PlaidLinkSource struct {
	client     *Lazy[*plaid.APIClient]
	clientName string
}

// NewPlaidLinkSource accepts "sandbox", "production", or a base URL for the
// environment.
func NewPlaidLinkSource(clientID, secret, environment, clientName string, httpClient *http.Client) *PlaidLinkSource {
	return &PlaidLinkSource{
		clientName: clientName,
		client: NewLazy(func() (*plaid.APIClient, error) {
			if clientID == "" || secret == "" {
				return nil, ErrPlaidNotConfigured
			}
			config := plaid.NewConfiguration()
			config.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
			config.AddDefaultHeader("PLAID-SECRET", secret)
			config.HTTPClient = httpClient
			switch {
			case strings.HasPrefix(environment, "http://"), strings.HasPrefix(environment, "https://"):
				config.Servers = plaid.ServerConfigurations{{URL: environment}}
			case environment == "production":
				config.UseEnvironment(plaid.Production)
			default:
				config.UseEnvironment(plaid.Sandbox)
			}
			return plaid.NewAPIClient(config), nil
		}),
	}
}

func (s *PlaidLinkSource) CreateLinkToken(ctx context.Context, clientUserID string) (string, error) {
	client, err := s.client.Get()
	if err != nil {
		return "", err
	}

	user := plaid.LinkTokenCreateRequestUser{ClientUserId: clientUserID}
	request := plaid.NewLinkTokenCreateRequest(
		s.clientName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US, plaid.COUNTRYCODE_CA},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_AUTH})

	resp, _, err := client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		if plaidErr, convErr := plaid.ToPlaidError(err); convErr == nil {
			return "", fmt.Errorf("plaid link token: %s: %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
		}
		return "", fmt.Errorf("plaid link token: %w", err)
	}
	if resp.GetLinkToken() == "" {
		return "", ErrLinkTokenMissing
	}
	return resp.GetLinkToken(), nil
}
