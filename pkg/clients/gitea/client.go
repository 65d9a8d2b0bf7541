package gitea

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const HeaderAuthorization = "Authorization"

var (
	ErrMissingBaseURL = errors.New("gitea base URL is required")
	ErrMissingToken   = errors.New("gitea admin token is required")
	ErrEncodeBody     = errors.New("failed to encode request body")
)

// Client is a thin typed wrapper over the Gitea admin REST API. Each method
// issues exactly one HTTP call and hands the raw response back; status
// interpretation belongs to the caller.
type Client struct {
	logger     hclog.Logger
	httpClient *http.Client
	baseURL    string
	token      string
}

type Options struct {
	// BaseURL points at the API root, e.g. https://gitea.example.com/api/v1/.
	BaseURL string
	// Token is the admin access token sent as `Authorization: token <T>`.
	Token string
	// TLS overrides the transport TLS configuration, for backends behind a
	// private CA. Nil keeps the default transport.
	TLS *tls.Config
}

func NewClient(opts Options, logger hclog.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	if opts.Token == "" {
		return nil, ErrMissingToken
	}

	httpClient := &http.Client{}
	if opts.TLS != nil {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: opts.TLS,
		}
	}

	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		token:      opts.Token,
	}, nil
}

// GetUser retrieves a user by username. 200 carries the user body; anything
// else, typically 404, means the user is absent.
func (c *Client) GetUser(ctx context.Context, username string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "/users/"+username, nil, nil)
}

// GetUsers lists users through the admin endpoint with optional pagination.
func (c *Client) GetUsers(ctx context.Context, page, limit *int) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "/admin/users", pageQuery(page, limit), nil)
}

func (c *Client) CreateUser(ctx context.Context, opts CreateUserOption) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, "/admin/users", nil, opts)
}

func (c *Client) EditUser(ctx context.Context, username string, opts EditUserOption) (*http.Response, error) {
	return c.do(ctx, http.MethodPatch, "/admin/users/"+username, nil, opts)
}

// DeleteUser deletes a user. The backend decides the response for a user that
// does not exist.
func (c *Client) DeleteUser(ctx context.Context, username string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+username, nil, nil)
}

func (c *Client) GetOrg(ctx context.Context, org string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "/orgs/"+org, nil, nil)
}

func (c *Client) GetOrgs(ctx context.Context, page, limit *int) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "/orgs", pageQuery(page, limit), nil)
}

func (c *Client) CreateOrg(ctx context.Context, opts CreateOrgOption) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, "/orgs", nil, opts)
}

func (c *Client) EditOrg(ctx context.Context, org string, opts EditOrgOption) (*http.Response, error) {
	return c.do(ctx, http.MethodPatch, "/orgs/"+org, nil, opts)
}

func (c *Client) GetOrgMembers(ctx context.Context, org string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "/orgs/"+org+"/members", nil, nil)
}

func (c *Client) GetOrgTeams(ctx context.Context, org string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, "/orgs/"+org+"/teams", nil, nil)
}

func (c *Client) CreateTeam(ctx context.Context, org string, opts CreateTeamOption) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, "/orgs/"+org+"/teams", nil, opts)
}

func (c *Client) AddTeamMember(ctx context.Context, teamID int64, username string) (*http.Response, error) {
	return c.do(ctx, http.MethodPut, teamMemberPath(teamID, username), nil, nil)
}

func (c *Client) RemoveTeamMember(ctx context.Context, teamID int64, username string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, teamMemberPath(teamID, username), nil, nil)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	resourcePath string,
	query url.Values,
	body any,
) (*http.Response, error) {
	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+resourcePath, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderAuthorization, "token "+c.token)

	c.logger.Debug("calling Gitea", "method", method, "path", resourcePath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

func teamMemberPath(teamID int64, username string) string {
	return fmt.Sprintf("/teams/%d/members/%s", teamID, username)
}
