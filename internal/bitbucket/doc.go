// Package bitbucket is the Bitbucket Pipelines forge: a minimal Bitbucket
// Cloud 2.0 REST client that fetches a pull request diff and posts a pull
// request comment.
package bitbucket
