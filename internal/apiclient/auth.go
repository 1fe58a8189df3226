package apiclient

import (
	"context"
	"net/http"

	"sharebite/internal/domain"
)

type RegisterRequest struct {
	OrganizationType   domain.OrganizationType `json:"organizationType"`
	OrganizationName   string                  `json:"organizationName"`
	RegistrationNumber string                  `json:"registrationNumber"`
	PhoneNumber        string                  `json:"phoneNumber"`
	ContactPerson      string                  `json:"contactPerson"`
	Email              string                  `json:"email"`
	Address            string                  `json:"address"`
	Password           string                  `json:"password"`
}

type RegisterResponse struct {
	Message      string               `json:"message"`
	Organization *domain.Organization `json:"organization"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string               `json:"token"`
	User  *domain.Organization `json:"user"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.anonymous().do(ctx, http.MethodPost, "/auth/register", req, &resp, defaultMapping); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login never sends the current session's token, so a rejected attempt
// cannot invalidate a session that is still valid.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.anonymous().do(ctx, http.MethodPost, "/auth/login", creds, &resp, defaultMapping); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, domain.NewTransportError(errIncompleteLogin)
	}
	return &resp, nil
}

// Logout tells the server the session ended. The token must be passed
// explicitly since the local session is already cleared by then.
func (c *Client) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.withToken(token).do(ctx, http.MethodPost, "/auth/logout", nil, nil, defaultMapping)
}

func (c *Client) anonymous() *Client { return c.withToken("") }

type staticToken string

func (t staticToken) Token() string { return string(t) }

// withToken returns a copy of c that sends token and does not report 401s.
func (c *Client) withToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		tokens:     staticToken(token),
	}
}
