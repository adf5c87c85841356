// Package auth obtains Spotify client-credentials tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrMissingCredentials is returned when the client id or secret is empty.
	ErrMissingCredentials = errors.New("missing spotify client id or client secret")

	// ErrTokenUnavailable is returned when the token endpoint does not yield a token.
	ErrTokenUnavailable = errors.New("spotify token unavailable")
)

// Authenticator exchanges client credentials for bearer tokens.
type Authenticator struct {
	config     clientcredentials.Config
	httpClient *http.Client
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenURL overrides the token endpoint.
func WithTokenURL(url string) Option {
	return func(a *Authenticator) {
		if url != "" {
			a.config.TokenURL = url
		}
	}
}

// WithHTTPClient sets the HTTP client used for token and API requests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Authenticator) {
		a.httpClient = c
	}
}

// New creates an Authenticator for the given credentials.
// Returns ErrMissingCredentials if either value is empty.
func New(clientID, clientSecret string, opts ...Option) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	a := &Authenticator{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Token performs a single client-credentials exchange.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	token, err := a.config.Token(a.withHTTPClient(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrTokenUnavailable)
	}
	return token, nil
}

// Client returns an HTTP client that sends token as a bearer credential.
// The token is never refreshed; an expired token surfaces as a 401 from the API.
func (a *Authenticator) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	return oauth2.NewClient(a.withHTTPClient(ctx), oauth2.StaticTokenSource(token))
}

func (a *Authenticator) withHTTPClient(ctx context.Context) context.Context {
	if a.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}
