package platform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Platform identifies the execution context of a run.
type Platform string

const (
	GitHub    Platform = "github"
	Bitbucket Platform = "bitbucket"
	Local     Platform = "local"
)

// All lists the supported platforms in display order.
var All = []Platform{GitHub, Bitbucket, Local}

// IsRemote reports whether the platform posts to a forge API.
func (p Platform) IsRemote() bool {
	return p == GitHub || p == Bitbucket
}

func (p Platform) String() string {
	return string(p)
}

var aliases = map[string]Platform{
	"github":              GitHub,
	"gh":                  GitHub,
	"github-actions":      GitHub,
	"bitbucket":           Bitbucket,
	"bb":                  Bitbucket,
	"bitbucket-pipelines": Bitbucket,
	"local":               Local,
}

// Parse converts a selector value into a Platform. An empty selector means Local.
func Parse(selector string) (Platform, error) {
	s := strings.ToLower(strings.TrimSpace(selector))
	if s == "" {
		return Local, nil
	}
	if p, ok := aliases[s]; ok {
		return p, nil
	}
	return "", &UnsupportedPlatformError{Value: selector}
}

// Credential environment variables.
const (
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvGitHubRepository = "GITHUB_REPOSITORY"
	EnvGitHubRef        = "GITHUB_REF"
	EnvPRNumber         = "PR_NUMBER"

	EnvBitbucketToken     = "BITBUCKET_TOKEN"
	EnvBitbucketUsername  = "BITBUCKET_USERNAME"
	EnvBitbucketWorkspace = "BITBUCKET_WORKSPACE"
	EnvBitbucketRepoSlug  = "BITBUCKET_REPO_SLUG"
	EnvBitbucketPRID      = "BITBUCKET_PR_ID"
)

// Credentials holds the per-context tokens and identifiers. They come from the
// environment only and are never persisted.
type Credentials struct {
	Token string
	// Username switches Bitbucket to basic auth with Token as app password.
	Username string
	// Workspace is the GitHub owner or the Bitbucket workspace.
	Workspace  string
	Repository string
	ReviewUnit int
}

// Resolution is the outcome of resolving the execution context.
type Resolution struct {
	Platform    Platform
	Credentials Credentials
}

// Secrets returns the credential values that must never appear in output.
func (r Resolution) Secrets() []string {
	if r.Credentials.Token == "" {
		return nil
	}
	return []string{r.Credentials.Token}
}

// Resolve selects the platform and validates its credentials. getenv is
// usually os.Getenv; tests pass a map lookup.
func Resolve(selector string, getenv func(string) string) (Resolution, error) {
	p, err := Parse(selector)
	if err != nil {
		return Resolution{}, err
	}

	switch p {
	case GitHub:
		return resolveGitHub(getenv)
	case Bitbucket:
		return resolveBitbucket(getenv)
	default:
		return Resolution{Platform: Local}, nil
	}
}

var pullRefRe = regexp.MustCompile(`^refs/pull/(\d+)/`)

func resolveGitHub(getenv func(string) string) (Resolution, error) {
	token := strings.TrimSpace(getenv(EnvGitHubToken))
	repository := strings.TrimSpace(getenv(EnvGitHubRepository))
	unit := strings.TrimSpace(getenv(EnvPRNumber))
	if unit == "" {
		if m := pullRefRe.FindStringSubmatch(getenv(EnvGitHubRef)); m != nil {
			unit = m[1]
		}
	}

	var missing []string
	if token == "" {
		missing = append(missing, EnvGitHubToken)
	}
	if repository == "" {
		missing = append(missing, EnvGitHubRepository)
	}
	if unit == "" {
		missing = append(missing, EnvPRNumber)
	}
	if len(missing) > 0 {
		ce := &ConfigurationError{Platform: GitHub, Missing: missing}
		if unit == "" {
			ce.Reason = fmt.Sprintf("%s may instead be derived from %s=refs/pull/<n>/merge", EnvPRNumber, EnvGitHubRef)
		}
		return Resolution{}, ce
	}

	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Resolution{}, &ConfigurationError{
			Platform: GitHub,
			Reason:   fmt.Sprintf("%s must be owner/repo, got %q", EnvGitHubRepository, repository),
		}
	}

	n, err := parseReviewUnit(GitHub, EnvPRNumber, unit)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		Platform: GitHub,
		Credentials: Credentials{
			Token:      token,
			Workspace:  owner,
			Repository: repo,
			ReviewUnit: n,
		},
	}, nil
}

func resolveBitbucket(getenv func(string) string) (Resolution, error) {
	values := map[string]string{}
	var missing []string
	for _, key := range []string{EnvBitbucketToken, EnvBitbucketWorkspace, EnvBitbucketRepoSlug, EnvBitbucketPRID} {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return Resolution{}, &ConfigurationError{Platform: Bitbucket, Missing: missing}
	}

	n, err := parseReviewUnit(Bitbucket, EnvBitbucketPRID, values[EnvBitbucketPRID])
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{
		Platform: Bitbucket,
		Credentials: Credentials{
			Token:      values[EnvBitbucketToken],
			Username:   strings.TrimSpace(getenv(EnvBitbucketUsername)),
			Workspace:  values[EnvBitbucketWorkspace],
			Repository: values[EnvBitbucketRepoSlug],
			ReviewUnit: n,
		},
	}, nil
}

func parseReviewUnit(p Platform, key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, &ConfigurationError{
			Platform: p,
			Reason:   fmt.Sprintf("%s must be a positive integer, got %q", key, value),
		}
	}
	return n, nil
}
