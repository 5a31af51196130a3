// Package google implements rentauth.IdentityProvider against Google's
// OpenID Connect userinfo endpoint: the provider access token obtained by
// the client is exchanged for the identity Google asserts for it.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rentora/rentauth"
)

const defaultUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Config defines a public type used by rentauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// UserinfoURL overrides the endpoint, mainly for tests.
	UserinfoURL string

	// HTTPClient defaults to a client with a 10s timeout.
	HTTPClient *http.Client
}

// Provider defines a public type used by rentauth APIs.
//
// Provider instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Provider struct {
	config Config
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) *Provider {
	if cfg.UserinfoURL == "" {
		cfg.UserinfoURL = defaultUserinfoURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Provider{config: cfg}
}

// userinfo mirrors the OIDC userinfo response fields we consume.
type userinfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// FetchProfile describes the fetchprofile operation and its observable behavior.
//
// FetchProfile may return an error when input validation, dependency calls, or security checks fail.
// FetchProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Provider) FetchProfile(ctx context.Context, accessToken string) (*rentauth.ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		// Preserve context errors so the caller can distinguish a
		// deadline from a rejection.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, rentauth.ErrProviderToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var info userinfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, rentauth.ErrProviderToken
	}

	return &rentauth.ProviderProfile{
		SubjectID:     info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		AvatarURL:     info.Picture,
	}, nil
}
