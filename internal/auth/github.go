package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the part of the GitHub profile we keep.
//
// Email is the account's primary verified address when there is one,
// otherwise any verified address, otherwise empty.
type GitHubUser struct {
	ID        int64  `json:"id"`         // stable numeric id
	Login     string `json:"login"`      // e.g. "octocat"
	Name      string `json:"name"`       // display name, may be empty
	Email     string `json:"email"`      // see above
	AvatarURL string `json:"avatar_url"` // profile picture URL
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// DeviceCode is what the person at the terminal needs to approve a
// sign-in: open VerificationURI and type UserCode.
type DeviceCode struct {
	UserCode        string
	VerificationURI string
	Expiry          time.Time

	resp *oauth2.DeviceAuthResponse
}

// GitHubProvider signs users in with the OAuth 2.0 device authorization
// grant (RFC 8628), the flow meant for programs with no browser and no
// redirect URL:
//
//  1. StartDeviceLogin asks GitHub for a device code and a short user code.
//  2. The user opens the verification page and enters the user code.
//  3. CompleteDeviceLogin polls the token endpoint until the user approves,
//     then reads /user and /user/emails with the access token.
//
// Only a client id is needed. Device flow apps have no client secret.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewGitHubProvider returns a provider talking to github.com.
func NewGitHubProvider(clientID string) *GitHubProvider {
	return NewGitHubProviderWithEndpoint(clientID, github.Endpoint, "https://api.github.com")
}

// NewGitHubProviderWithEndpoint points the provider at other OAuth and API
// hosts (GitHub Enterprise, or an httptest server).
func NewGitHubProviderWithEndpoint(clientID string, endpoint oauth2.Endpoint, apiBase string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID: clientID,
			Scopes:   []string{"read:user", "user:email"},
			Endpoint: endpoint,
		},
		apiBase: strings.TrimRight(apiBase, "/"),
	}
}

// StartDeviceLogin requests a device and user code.
func (p *GitHubProvider) StartDeviceLogin(ctx context.Context) (*DeviceCode, error) {
	resp, err := p.config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: requesting GitHub device code: %w", err)
	}

	uri := resp.VerificationURIComplete
	if uri == "" {
		uri = resp.VerificationURI
	}

	return &DeviceCode{
		UserCode:        resp.UserCode,
		VerificationURI: uri,
		Expiry:          resp.Expiry,
		resp:            resp,
	}, nil
}

// CompleteDeviceLogin blocks until the user approves the code, the code
// expires or ctx ends, then returns the GitHub profile.
func (p *GitHubProvider) CompleteDeviceLogin(ctx context.Context, dc *DeviceCode) (*GitHubUser, error) {
	if dc == nil || dc.resp == nil {
		return nil, fmt.Errorf("auth: device code was not issued by StartDeviceLogin")
	}

	token, err := p.config.DeviceAccessToken(ctx, dc.resp)
	if err != nil {
		return nil, fmt.Errorf("auth: waiting for GitHub approval: %w", err)
	}

	client := p.config.Client(ctx, token)

	var user GitHubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return nil, err
	}
	user.Email = pickEmail(emails)

	return &user, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("auth: building GitHub %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: calling GitHub %s API: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: GitHub %s API returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("auth: decoding GitHub %s response: %w", path, err)
	}
	return nil
}

// pickEmail prefers the primary verified address. Unverified addresses are
// never returned: account linking trusts this value.
func pickEmail(emails []githubEmail) string {
	fallback := ""
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback
}
