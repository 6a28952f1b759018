// Package googleauth signs users in with Google and reads their profile.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const (
	// TasksScope lets the app create lists in the user's Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	// exchangeTimeout bounds the code exchange and profile lookup.
	exchangeTimeout = 30 * time.Second
)

// Scopes requested at sign-in.
var Scopes = []string{oauth2api.OpenIDScope, oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope, TasksScope}

// Config builds the OAuth client configuration for the web app.
func Config(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// Identity is the signed-in Google account.
type Identity struct {
	Subject string
	Email   string
	Name    string
	// Token is the JSON encoded oauth2.Token.
	Token []byte
}

// Provider performs the authorization code flow with PKCE.
type Provider struct {
	config *oauth2.Config
	// endpoint overrides the userinfo API base URL (tests).
	endpoint string
}

func NewProvider(config *oauth2.Config) *Provider {
	return &Provider{config: config}
}

// NewProviderWithEndpoint points profile lookups at endpoint.
func NewProviderWithEndpoint(config *oauth2.Config, endpoint string) *Provider {
	return &Provider{config: config, endpoint: endpoint}
}

// Enabled reports whether client credentials are configured.
func (p *Provider) Enabled() bool {
	return p.config != nil && p.config.ClientID != "" && p.config.ClientSecret != ""
}

// AuthCodeURL returns the consent page URL for state and the PKCE verifier.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

// Exchange trades the callback code for a token and loads the profile.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := p.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(p.config.TokenSource(ctx, token))}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google profile has no email")
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("encode token: %w", err)
	}
	return &Identity{Subject: info.Id, Email: info.Email, Name: info.Name, Token: raw}, nil
}
