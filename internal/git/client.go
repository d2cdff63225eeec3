package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

// Client runs read-only git queries by invoking the git CLI.
//
// It is stateless: every method receives the directory to run in, which is
// handed to git through -C.
type Client struct{}

// NewClient creates a new git Client.
func NewClient() *Client {
	return &Client{}
}

// CurrentBranch returns the short name of the branch checked out at dir.
//
// It uses `git symbolic-ref --short -q HEAD`, which, unlike
// `git rev-parse --abbrev-ref HEAD`, also works on an unborn branch in a
// repository without commits. A detached HEAD yields an empty name and no
// error: there is no branch to read.
func (c *Client) CurrentBranch(dir string) (string, error) {
	output, err := runGit(dir, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		// -q makes symbolic-ref exit 1 silently when HEAD is detached.
		if exitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// RepoRoot returns the absolute path to the top-level directory of the
// working tree containing dir.
//
// For linked worktrees this is the worktree root, which is where the
// repository config file is looked up.
func (c *Client) RepoRoot(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// IsMergeInProgress reports whether MERGE_HEAD exists, meaning the commit
// being prepared concludes a merge.
//
// `git rev-parse -q --verify MERGE_HEAD` exits 1 without output when the
// ref is missing; any other failure is returned as an error.
func (c *Client) IsMergeInProgress(dir string) (bool, error) {
	_, err := runGit(dir, "rev-parse", "-q", "--verify", "MERGE_HEAD")
	if err == nil {
		return true, nil
	}
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// runGit executes a git command with the given arguments in the specified directory.
//
// On success it returns stdout. On failure it returns a model.CLIError with
// ExitGitError that wraps the *exec.ExitError and includes stderr.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204: args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}

// exitCode extracts the git process exit code from an error returned by
// runGit, or -1 if git did not run to completion.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
