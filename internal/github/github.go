package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v68/github"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/dshills/prism-ci/internal/platform"
)

const defaultAPIURL = "https://api.github.com"

const (
	callFetchDiff   = "GET pull request diff"
	callPostComment = "POST issue comment"
)

// Client talks to one pull request on GitHub.
type Client struct {
	gh     *gogithub.Client
	owner  string
	repo   string
	number int
}

// NewClient creates a client bound to the pull request in creds. An empty
// apiURL selects the public API; a nil httpClient gets a cleanhttp client
// with transport-level timeouts only.
func NewClient(creds platform.Credentials, apiURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	base, err := url.Parse(strings.TrimRight(apiURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing GitHub API URL %q: %w", apiURL, err)
	}

	gh := gogithub.NewClient(httpClient).WithAuthToken(creds.Token)
	gh.BaseURL = base

	return &Client{
		gh:     gh,
		owner:  creds.Workspace,
		repo:   creds.Repository,
		number: creds.ReviewUnit,
	}, nil
}

// Platform returns platform.GitHub.
func (c *Client) Platform() platform.Platform { return platform.GitHub }

// FetchDiff returns the pull request diff exactly as GitHub serves it.
func (c *Client) FetchDiff(ctx context.Context) (string, error) {
	diff, resp, err := c.gh.PullRequests.GetRaw(ctx, c.owner, c.repo, c.number,
		gogithub.RawOptions{Type: gogithub.Diff})
	if err != nil {
		return "", &platform.RemoteFetchError{
			Platform:   platform.GitHub,
			Call:       callFetchDiff,
			StatusCode: statusCode(resp, err),
			Err:        err,
		}
	}
	return diff, nil
}

// Post creates an issue comment on the pull request with body as its text.
func (c *Client) Post(ctx context.Context, body string) error {
	comment := &gogithub.IssueComment{Body: &body}
	_, resp, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, c.number, comment)
	if err != nil {
		return &platform.RemoteDeliveryError{
			Platform:   platform.GitHub,
			Call:       callPostComment,
			StatusCode: statusCode(resp, err),
			Err:        err,
		}
	}
	return nil
}

// String describes the bound pull request for log lines.
func (c *Client) String() string {
	return fmt.Sprintf("%s/%s#%d", c.owner, c.repo, c.number)
}

func statusCode(resp *gogithub.Response, err error) int {
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	var ghErr *gogithub.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}
