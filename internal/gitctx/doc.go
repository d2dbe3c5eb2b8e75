// Package gitctx extracts the local review diff from a git repository.
//
// [Repo.ResolveBase] picks the base branch (explicit override, then the
// branch origin/HEAD points at, then "main") and [Repo.BranchDiff] returns
// the three-dot diff between that base and HEAD by shelling out to git.
// Failures surface as [*LocalDiffError].
package gitctx
