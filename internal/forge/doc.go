// Package forge defines the capability every execution context provides:
// fetch the diff under review and post the finished review document.
//
// There are exactly three variants. [New] picks one from a resolved
// platform: the GitHub and Bitbucket API clients, or [Local], which diffs the
// working tree with git and prints to stdout.
package forge
