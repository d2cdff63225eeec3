// Package git answers the repository questions the hooks need: which
// branch is checked out, where the repository root is, and whether a
// merge is in progress.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Works inside linked worktrees and during rebases, where the hook
//     is invoked by git itself
//   - Keeps the binary free of a large dependency for three read-only queries
package git
