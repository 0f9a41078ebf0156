package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/marksverdhei/park/internal/config"
)

const pageSize = 100

// Client is a minimal GitHub REST API v3 client covering what the
// reconciler needs: repository listings, workflow metadata, and runner
// registration tokens.
type Client struct {
	http  *resty.Client
	debug bool
}

// NewClient creates a new GitHub API client.
func NewClient(cfg *config.Config) *Client {
	rc := resty.New().
		SetBaseURL(cfg.APIURL).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{http: rc, debug: cfg.Debug}
}

// AuthenticatedUser returns the login of the token's user. Used as the
// default owner when none is configured, matching `gh api user`.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&user).Get("/user")
	if err != nil {
		return "", fmt.Errorf("get authenticated user: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	return user.Login, nil
}

// repository is the subset of the repo listing payload we consume.
type repository struct {
	FullName string    `json:"full_name"`
	PushedAt time.Time `json:"pushed_at"`
	Archived bool      `json:"archived"`
	Disabled bool      `json:"disabled"`
}

var errNotFound = errors.New("not found")

// listRepositories pages through every repository the token can see for
// owner. The per-user listing endpoint only ever returns public
// repositories, so the acting user's own account is listed through
// /user/repos and organisations through /orgs/{owner}/repos; both include
// the private repositories the token is authorised for.
func (c *Client) listRepositories(ctx context.Context, owner, viewer string) ([]repository, error) {
	if owner == viewer {
		return c.pageRepositories(ctx, "/user/repos", map[string]string{"affiliation": "owner"})
	}
	repos, err := c.pageRepositories(ctx, fmt.Sprintf("/orgs/%s/repos", owner), nil)
	if errors.Is(err, errNotFound) {
		// Owner is another user's account, not an organisation; only its
		// public repositories are visible.
		return c.pageRepositories(ctx, fmt.Sprintf("/users/%s/repos", owner), nil)
	}
	return repos, err
}

func (c *Client) pageRepositories(ctx context.Context, path string, params map[string]string) ([]repository, error) {
	query := map[string]string{
		"per_page": strconv.Itoa(pageSize),
		"sort":     "pushed",
	}
	for k, v := range params {
		query[k] = v
	}

	var all []repository
	for page := 1; ; page++ {
		query["page"] = strconv.Itoa(page)

		var batch []repository
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(query).
			SetResult(&batch).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("list repositories at %s: %w", path, err)
		}
		if resp.StatusCode() == 404 {
			return nil, fmt.Errorf("%w: %s", errNotFound, path)
		}
		if resp.IsError() {
			return nil, apiError(resp)
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

// workflow is one entry of the workflow listing payload.
type workflow struct {
	Path  string `json:"path"`
	State string `json:"state"`
}

// listWorkflows returns the workflows configured for a repository. A 404
// means Actions has never been set up; callers treat that as no workflows.
func (c *Client) listWorkflows(ctx context.Context, owner, name string) ([]workflow, error) {
	var result struct {
		Workflows []workflow `json:"workflows"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/repos/%s/%s/actions/workflows", owner, name))
	if err != nil {
		return nil, fmt.Errorf("list workflows for %s/%s: %w", owner, name, err)
	}
	if resp.StatusCode() == 404 {
		return nil, nil
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result.Workflows, nil
}

// latestWorkflowRun returns the update time of the most recent workflow
// run, or the zero time when the repository has none.
func (c *Client) latestWorkflowRun(ctx context.Context, owner, name string) (time.Time, error) {
	var result struct {
		WorkflowRuns []struct {
			UpdatedAt time.Time `json:"updated_at"`
		} `json:"workflow_runs"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("per_page", "1").
		SetResult(&result).
		Get(fmt.Sprintf("/repos/%s/%s/actions/runs", owner, name))
	if err != nil {
		return time.Time{}, fmt.Errorf("list workflow runs for %s/%s: %w", owner, name, err)
	}
	if resp.StatusCode() == 404 {
		return time.Time{}, nil
	}
	if resp.IsError() {
		return time.Time{}, apiError(resp)
	}
	if len(result.WorkflowRuns) == 0 {
		return time.Time{}, nil
	}
	return result.WorkflowRuns[0].UpdatedAt, nil
}

// fileContent fetches and decodes a file through the contents API.
func (c *Client) fileContent(ctx context.Context, owner, name, path string) ([]byte, error) {
	var result struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/repos/%s/%s/contents/%s", owner, name, path))
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s/%s: %w", path, owner, name, err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	if result.Encoding != "base64" {
		return []byte(result.Content), nil
	}
	// The contents API wraps base64 payloads with newlines.
	return base64.StdEncoding.DecodeString(strings.ReplaceAll(result.Content, "\n", ""))
}

// RegistrationToken fetches a short-lived runner registration token for a
// repository. Each container start requests a fresh one.
func (c *Client) RegistrationToken(ctx context.Context, owner, name string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Post(fmt.Sprintf("/repos/%s/%s/actions/runners/registration-token", owner, name))
	if err != nil {
		return "", fmt.Errorf("registration token for %s/%s: %w", owner, name, err)
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	return result.Token, nil
}

func apiError(resp *resty.Response) error {
	return fmt.Errorf("github api: %s %s returned %d", resp.Request.Method, resp.Request.URL, resp.StatusCode())
}
