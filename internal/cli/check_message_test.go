// check_message_test.go runs the hook commands end to end
// against throwaway git repositories.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/prnj-hooks/internal/branch"
	"github.com/mmr-tortoise/prnj-hooks/internal/config"
	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

// clearEnv unsets the hook environment variables for the duration of the
// test so the caller's shell cannot influence the result.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvAutoAppend, config.EnvMessageSource} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// setupBranchRepo initializes an empty repository whose HEAD points at
// branchName. No commit is needed: the hooks only read the branch name.
func setupBranchRepo(t *testing.T, branchName string) string {
	t.Helper()

	dir := t.TempDir()
	runTestGit(t, dir, "init")
	runTestGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/"+branchName)
	return dir
}

// runTestGit runs a git command in dir and fails the test on error.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// writeCommitMsg writes content to COMMIT_EDITMSG inside dir's .git.
func writeCommitMsg(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, ".git", "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// readFile returns the content of path.
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// runCLI executes the root command with args against the repository at
// dir and returns the exit code and captured output.
func runCLI(t *testing.T, dir string, args ...string) (model.ExitCode, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCommand()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"-C", dir}, args...))

	code := Run(rootCmd)
	return code, stdout.String(), stderr.String()
}

// TestCheckMessageScenarios covers the documented end-to-end behaviour of
// the commit-msg hook.
func TestCheckMessageScenarios(t *testing.T) {
	tests := []struct {
		name       string
		branch     string
		message    string
		autoAppend string
		wantCode   model.ExitCode
		wantMsg    string
		wantStderr string
	}{
		{
			name:     "exempt wip branch",
			branch:   "wip-quick-fix",
			message:  "fix typo",
			wantCode: model.ExitSuccess,
			wantMsg:  "fix typo",
		},
		{
			name:     "identifiers appended",
			branch:   "PRNJ-123-DEV-456-add-login",
			message:  "Add login",
			wantCode: model.ExitSuccess,
			wantMsg:  "Add login\n\nPRNJ-123 DEV-456",
		},
		{
			name:     "identifiers already present",
			branch:   "PRNJ-123-DEV-456-add-login",
			message:  "Add login\n\nPRNJ-123 DEV-456",
			wantCode: model.ExitSuccess,
			wantMsg:  "Add login\n\nPRNJ-123 DEV-456",
		},
		{
			name:       "verify-only fails without touching the message",
			branch:     "PRNJ-123-DEV-456-add-login",
			message:    "Add login",
			autoAppend: "0",
			wantCode:   model.ExitMissingIdentifiers,
			wantMsg:    "Add login",
			wantStderr: "missing PRNJ/DEV identifiers",
		},
		{
			name:       "rejected branch",
			branch:     "feature/add-login",
			message:    "Add login",
			wantCode:   model.ExitRejectedBranch,
			wantMsg:    "Add login",
			wantStderr: branch.Pattern,
		},
		{
			name:     "hotfix branch with empty message",
			branch:   "hotfix-PRNJ-1-DEV-2-urgent",
			message:  "",
			wantCode: model.ExitSuccess,
			wantMsg:  "PRNJ-1 DEV-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.autoAppend != "" {
				t.Setenv(config.EnvAutoAppend, tt.autoAppend)
			}

			dir := setupBranchRepo(t, tt.branch)
			path := writeCommitMsg(t, dir, tt.message)

			code, _, stderr := runCLI(t, dir, "check-message", path)
			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr)
			assert.Equal(t, tt.wantMsg, readFile(t, path))
			if tt.wantStderr != "" {
				assert.Contains(t, stderr, tt.wantStderr)
			}
		})
	}
}

// TestCheckMessageSecondRunIsNoop verifies that running the hook twice
// does not append the identifiers twice.
func TestCheckMessageSecondRunIsNoop(t *testing.T) {
	clearEnv(t)
	dir := setupBranchRepo(t, "PRNJ-12345-DEV-54321-implement-feature")
	path := writeCommitMsg(t, dir, "feat: add X\n\nSome body\n")

	code, stdout, _ := runCLI(t, dir, "check-message", path)
	require.Equal(t, model.ExitSuccess, code)
	assert.Contains(t, stdout, "PRNJ-12345 DEV-54321")
	first := readFile(t, path)
	assert.Equal(t, "feat: add X\n\nSome body\n\nPRNJ-12345 DEV-54321", first)

	code, stdout, _ = runCLI(t, dir, "check-message", path)
	require.Equal(t, model.ExitSuccess, code)
	assert.Empty(t, stdout)
	assert.Equal(t, first, readFile(t, path))
}

// TestCheckMessageEditorComments verifies the editor flow: git hands the
// hook a message whose status comments name the branch, and those
// comments must not satisfy the identifier check.
func TestCheckMessageEditorComments(t *testing.T) {
	const branchName = "PRNJ-123-DEV-456-add-login"
	editorMsg := "Add login\n" +
		"# Please enter the commit message for your changes. Lines starting\n" +
		"# with '#' will be ignored, and an empty message aborts the commit.\n" +
		"#\n" +
		"# On branch " + branchName + "\n" +
		"#\n"

	t.Run("auto-append", func(t *testing.T) {
		clearEnv(t)
		dir := setupBranchRepo(t, branchName)
		path := writeCommitMsg(t, dir, editorMsg)

		code, _, stderr := runCLI(t, dir, "check-message", path)
		require.Equal(t, model.ExitSuccess, code, "stderr: %s", stderr)

		rewritten := readFile(t, path)
		assert.Equal(t, editorMsg+"\nPRNJ-123 DEV-456", rewritten)

		// Clean the message the way git does before recording the commit.
		cmd := exec.Command("git", "-C", dir, "stripspace", "--strip-comments")
		cmd.Stdin = strings.NewReader(rewritten)
		cleaned, err := cmd.Output()
		require.NoError(t, err)
		assert.Equal(t, "Add login\n\nPRNJ-123 DEV-456\n", string(cleaned))
	})

	t.Run("verify-only", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(config.EnvAutoAppend, "0")
		dir := setupBranchRepo(t, branchName)
		path := writeCommitMsg(t, dir, editorMsg)

		code, _, stderr := runCLI(t, dir, "check-message", path)
		assert.Equal(t, model.ExitMissingIdentifiers, code)
		assert.Contains(t, stderr, "did not find PRNJ-123 and DEV-456")
		assert.Equal(t, editorMsg, readFile(t, path))
	})
}

// TestCheckMessageVerifyOnlyFlag verifies that --verify-only overrides an
// environment that asks for auto-append.
func TestCheckMessageVerifyOnlyFlag(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAutoAppend, "1")

	dir := setupBranchRepo(t, "PRNJ-123-DEV-456-add-login")
	path := writeCommitMsg(t, dir, "Add login\n\nPRNJ-123\n")

	code, _, stderr := runCLI(t, dir, "check-message", "--verify-only", path)
	assert.Equal(t, model.ExitMissingIdentifiers, code)
	assert.Contains(t, stderr, "DEV-456")
	assert.NotContains(t, stderr, "did not find PRNJ-123")
	assert.Equal(t, "Add login\n\nPRNJ-123\n", readFile(t, path))
}

// TestCheckMessageConfigFile verifies that the repository config file
// selects the mode and the environment overrides it.
func TestCheckMessageConfigFile(t *testing.T) {
	clearEnv(t)

	dir := setupBranchRepo(t, "PRNJ-123-DEV-456-add-login")
	err := os.WriteFile(filepath.Join(dir, ".prnj-hooks.yaml"), []byte("autoAppend: false\n"), 0644)
	require.NoError(t, err)
	path := writeCommitMsg(t, dir, "Add login")

	code, _, _ := runCLI(t, dir, "check-message", path)
	assert.Equal(t, model.ExitMissingIdentifiers, code)
	assert.Equal(t, "Add login", readFile(t, path))

	t.Setenv(config.EnvAutoAppend, "true")
	code, _, _ = runCLI(t, dir, "check-message", path)
	assert.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, "Add login\n\nPRNJ-123 DEV-456", readFile(t, path))
}

// TestCheckMessageMalformedConfig verifies the config exit code.
func TestCheckMessageMalformedConfig(t *testing.T) {
	clearEnv(t)

	dir := setupBranchRepo(t, "PRNJ-123-DEV-456-add-login")
	err := os.WriteFile(filepath.Join(dir, ".prnj-hooks.json"), []byte(`{"autoAppend": `), 0644)
	require.NoError(t, err)
	path := writeCommitMsg(t, dir, "Add login")

	code, _, stderr := runCLI(t, dir, "check-message", path)
	assert.Equal(t, model.ExitConfigError, code)
	assert.Contains(t, stderr, ".prnj-hooks.json")
}

// TestCheckMessageMergeSkipped verifies that merge commits pass even on a
// branch that would otherwise be rejected.
func TestCheckMessageMergeSkipped(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvMessageSource, "merge")

	dir := setupBranchRepo(t, "main")
	path := writeCommitMsg(t, dir, "Merge branch 'x'")

	code, stdout, _ := runCLI(t, dir, "--json", "check-message", path)
	require.Equal(t, model.ExitSuccess, code)
	assert.Equal(t, "Merge branch 'x'", readFile(t, path))

	var res hookResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, model.OutcomeSkipped, res.Outcome)
}

// TestCheckMessageNonMergeSourceStillChecks verifies that other message
// sources do not skip the checks.
func TestCheckMessageNonMergeSourceStillChecks(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvMessageSource, "message")

	dir := setupBranchRepo(t, "main")
	path := writeCommitMsg(t, dir, "Update")

	code, _, _ := runCLI(t, dir, "check-message", path)
	assert.Equal(t, model.ExitRejectedBranch, code)
}

// TestCheckMessageJSON verifies the JSON result of an append.
func TestCheckMessageJSON(t *testing.T) {
	clearEnv(t)

	dir := setupBranchRepo(t, "hotfix-PRNJ-7-DEV-8-urgent")
	path := writeCommitMsg(t, dir, "Fix crash\n")

	code, stdout, _ := runCLI(t, dir, "--json", "check-message", path)
	require.Equal(t, model.ExitSuccess, code)

	var res hookResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "check-message", res.Command)
	assert.Equal(t, model.OutcomeAppended, res.Outcome)
	assert.Equal(t, "hotfix-PRNJ-7-DEV-8-urgent", res.Branch)
	assert.True(t, res.Hotfix)
	require.NotNil(t, res.Tickets)
	assert.Equal(t, branch.TicketPair{PRNJ: "7", DEV: "8"}, *res.Tickets)
	assert.Equal(t, model.ModeAutoAppend, res.Mode)
	assert.Equal(t, []string{"PRNJ-7", "DEV-8"}, res.Appended)
}

// TestCheckMessageJSONError verifies that failures are reported as a JSON
// error object on stderr.
func TestCheckMessageJSONError(t *testing.T) {
	clearEnv(t)

	dir := setupBranchRepo(t, "feature/add-login")
	path := writeCommitMsg(t, dir, "Add login")

	code, stdout, stderr := runCLI(t, dir, "--json", "check-message", path)
	require.Equal(t, model.ExitRejectedBranch, code)
	assert.Empty(t, stdout)

	var obj struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stderr), &obj))
	assert.Contains(t, obj.Error.Message, "could not find PRNJ-number")
}

// TestCheckMessageFileErrors verifies the IO exit code and that exempt
// branches never read the file.
func TestCheckMessageFileErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file on matched branch", func(t *testing.T) {
		dir := setupBranchRepo(t, "PRNJ-1-DEV-2-x")
		code, _, stderr := runCLI(t, dir, "check-message", filepath.Join(dir, "nope"))
		assert.Equal(t, model.ExitIOFailure, code)
		assert.Contains(t, stderr, "cannot read commit message file")
	})

	t.Run("missing file on exempt branch", func(t *testing.T) {
		dir := setupBranchRepo(t, "poc/idea")
		code, _, _ := runCLI(t, dir, "check-message", filepath.Join(dir, "nope"))
		assert.Equal(t, model.ExitSuccess, code)
	})
}

// TestCheckMessageKeepsPermissions verifies that the rewrite keeps the
// file mode of the original message file.
func TestCheckMessageKeepsPermissions(t *testing.T) {
	clearEnv(t)

	dir := setupBranchRepo(t, "PRNJ-1-DEV-2-x")
	path := writeCommitMsg(t, dir, "msg")
	require.NoError(t, os.Chmod(path, 0600))

	code, _, _ := runCLI(t, dir, "check-message", path)
	require.Equal(t, model.ExitSuccess, code)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

// TestCheckMessageArgs verifies that the commit message file is required.
func TestCheckMessageArgs(t *testing.T) {
	clearEnv(t)

	dir := setupBranchRepo(t, "PRNJ-1-DEV-2-x")
	code, _, stderr := runCLI(t, dir, "check-message")
	assert.Equal(t, model.ExitGeneralError, code)
	assert.Contains(t, stderr, "accepts 1 arg")
}

// fakeRepo is a Repo whose answers are fixed by the test.
type fakeRepo struct {
	branch     string
	branchErr  error
	merging    bool
	mergingErr error
	root       string
}

func (f *fakeRepo) CurrentBranch(string) (string, error) { return f.branch, f.branchErr }
func (f *fakeRepo) RepoRoot(string) (string, error) { return f.root, nil }
func (f *fakeRepo) IsMergeInProgress(string) (bool, error) { return f.merging, f.mergingErr }

// withRepo swaps newRepo for the duration of the test.
func withRepo(t *testing.T, repo Repo) {
	t.Helper()
	orig := newRepo
	newRepo = func() Repo { return repo }
	t.Cleanup(func() { newRepo = orig })
}

// TestCheckMessageGitFailure verifies that git errors keep their exit code.
func TestCheckMessageGitFailure(t *testing.T) {
	clearEnv(t)
	withRepo(t, &fakeRepo{
		root:      t.TempDir(),
		branchErr: model.WrapCLIError(model.ExitGitError, "git symbolic-ref failed", errors.New("exit status 128")),
	})

	code, _, stderr := runCLI(t, ".", "check-message", "COMMIT_EDITMSG")
	assert.Equal(t, model.ExitGitError, code)
	assert.Contains(t, stderr, "git symbolic-ref failed")
}

// TestCheckMessageMergeHead verifies that MERGE_HEAD skips the check when
// the hook framework did not report a message source.
func TestCheckMessageMergeHead(t *testing.T) {
	clearEnv(t)
	withRepo(t, &fakeRepo{root: t.TempDir(), branch: "main", merging: true})

	code, _, _ := runCLI(t, ".", "check-message", "COMMIT_EDITMSG")
	assert.Equal(t, model.ExitSuccess, code)
}

// TestCheckMessageDetachedHead verifies that a detached HEAD is rejected
// with the empty-branch reason.
func TestCheckMessageDetachedHead(t *testing.T) {
	clearEnv(t)
	withRepo(t, &fakeRepo{root: t.TempDir(), branch: ""})

	code, _, stderr := runCLI(t, ".", "check-message", "COMMIT_EDITMSG")
	assert.Equal(t, model.ExitRejectedBranch, code)
	assert.Contains(t, stderr, "branch name is empty")
	assert.Contains(t, stderr, "HEAD is detached")
}
