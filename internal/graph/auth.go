package graph

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"
)

// graphScope requests every application permission granted to the client.
const graphScope = "https://graph.microsoft.com/.default"

// tokenURLForTenant returns the v2.0 token endpoint of an Entra ID tenant.
func tokenURLForTenant(tenantID string) string {
	return microsoft.AzureADEndpoint(tenantID).TokenURL
}

// tokenFetcher performs the OAuth2 client-credentials grant. It keeps no
// token between calls: every fetch goes to the token endpoint.
type tokenFetcher struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
}

func newTokenFetcher(tokenURL, clientID, clientSecret string, httpClient *http.Client) *tokenFetcher {
	return &tokenFetcher{
		cfg: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{graphScope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// fetch acquires a new access token. Failures wrap ErrAuth.
func (f *tokenFetcher) fetch(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)

	tok, err := f.cfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token response missing access_token", ErrAuth)
	}

	return tok.AccessToken, nil
}
