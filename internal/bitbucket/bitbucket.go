package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/dshills/prism-ci/internal/platform"
)

const defaultAPIURL = "https://api.bitbucket.org/2.0"

const (
	callFetchDiff   = "GET pull request diff"
	callPostComment = "POST pull request comment"
)

// maxErrorBody caps how much of an error response is echoed into errors.
const maxErrorBody = 2048

// Client talks to one pull request on Bitbucket Cloud.
type Client struct {
	apiURL    string
	token     string
	username  string
	workspace string
	repoSlug  string
	prID      int
	httpCli   *http.Client
}

// NewClient creates a client bound to the pull request in creds. With a
// Username set, requests use basic auth with Token as the app password;
// otherwise Token is sent as a bearer token.
func NewClient(creds platform.Credentials, apiURL string, httpClient *http.Client) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	return &Client{
		apiURL:    strings.TrimRight(apiURL, "/"),
		token:     creds.Token,
		username:  creds.Username,
		workspace: creds.Workspace,
		repoSlug:  creds.Repository,
		prID:      creds.ReviewUnit,
		httpCli:   httpClient,
	}
}

// Platform returns platform.Bitbucket.
func (c *Client) Platform() platform.Platform { return platform.Bitbucket }

func (c *Client) String() string {
	return fmt.Sprintf("%s/%s#%d", c.workspace, c.repoSlug, c.prID)
}

func (c *Client) pullRequestURL(suffix string) string {
	return fmt.Sprintf("%s/repositories/%s/%s/pullrequests/%d/%s",
		c.apiURL, url.PathEscape(c.workspace), url.PathEscape(c.repoSlug), c.prID, suffix)
}

func (c *Client) authorize(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.token)
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
}

// FetchDiff returns the pull request diff exactly as Bitbucket serves it.
func (c *Client) FetchDiff(ctx context.Context) (string, error) {
	fail := func(status int, err error) error {
		return &platform.RemoteFetchError{
			Platform:   platform.Bitbucket,
			Call:       callFetchDiff,
			StatusCode: status,
			Err:        err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pullRequestURL("diff"), nil)
	if err != nil {
		return "", fail(0, fmt.Errorf("creating request: %w", err))
	}
	c.authorize(req)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", fail(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fail(resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fail(resp.StatusCode, apiError(body))
	}
	return string(body), nil
}

type commentContent struct {
	Raw string `json:"raw"`
}

type commentRequest struct {
	Content commentContent `json:"content"`
}

// Post creates a pull request comment whose raw markdown is body.
func (c *Client) Post(ctx context.Context, body string) error {
	fail := func(status int, err error) error {
		return &platform.RemoteDeliveryError{
			Platform:   platform.Bitbucket,
			Call:       callPostComment,
			StatusCode: status,
			Err:        err,
		}
	}

	payload, err := json.Marshal(commentRequest{Content: commentContent{Raw: body}})
	if err != nil {
		return fail(0, fmt.Errorf("marshaling comment: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.pullRequestURL("comments"), bytes.NewReader(payload))
	if err != nil {
		return fail(0, fmt.Errorf("creating request: %w", err))
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(resp.StatusCode, apiError(respBody))
	}
	return nil
}

// apiError extracts Bitbucket's error message, falling back to the raw body.
func apiError(body []byte) error {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return fmt.Errorf("%s", parsed.Error.Message)
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if text == "" {
		return fmt.Errorf("empty response body")
	}
	return fmt.Errorf("%s", text)
}
