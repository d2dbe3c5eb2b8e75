// Package github is the GitHub Actions forge: it fetches a pull request's
// unified diff and posts the review document as a pull request comment.
//
// Requests go through go-github against GITHUB_API_URL (GitHub Enterprise)
// or https://api.github.com. Non-2xx responses and transport failures are
// reported as [platform.RemoteFetchError] and [platform.RemoteDeliveryError].
package github
