package analysis

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Auth selects how requests to the analysis service are authorized. A
// client id takes precedence over a static token; with neither, requests
// are sent unauthenticated.
type Auth struct {
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// NewHTTPClient returns an HTTP client that attaches credentials per auth.
func NewHTTPClient(ctx context.Context, auth Auth, timeout time.Duration) *http.Client {
	var client *http.Client
	switch {
	case auth.ClientID != "":
		cfg := clientcredentials.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			TokenURL:     auth.TokenURL,
		}
		client = cfg.Client(ctx)
	case auth.Token != "":
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: auth.Token,
			TokenType:   "Bearer",
		}))
	default:
		client = &http.Client{}
	}
	client.Timeout = timeout
	return client
}
