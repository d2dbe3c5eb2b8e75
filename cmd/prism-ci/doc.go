// Prism-ci reviews pull requests from CI pipelines with an external review
// generator.
//
// It runs in GitHub Actions, Bitbucket Pipelines, or a local git checkout,
// feeds the pull request diff to a review command (claude -p by default),
// writes the review to an artifact file, and posts it as a pull request
// comment or prints it.
//
// Usage:
//
//	prism-ci run                      # review and deliver
//	prism-ci run --platform local     # review the current branch against its base
//	prism-ci check                    # validate config and credentials, no network
//	prism-ci config init              # write a default config file
//	prism-ci config set base_branch develop
//	prism-ci config show
//
// Exit codes: 0 success, 2 usage error, 3 configuration error, 4 diff or
// review failure, 5 delivery failure, 1 anything else.
package main
