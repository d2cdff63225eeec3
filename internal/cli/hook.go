package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mmr-tortoise/prnj-hooks/internal/branch"
	"github.com/mmr-tortoise/prnj-hooks/internal/config"
	"github.com/mmr-tortoise/prnj-hooks/internal/git"
	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

// Repo is the subset of git queries the hook commands rely on.
// *git.Client satisfies it.
type Repo interface {
	CurrentBranch(dir string) (string, error)
	RepoRoot(dir string) (string, error)
	IsMergeInProgress(dir string) (bool, error)
}

// newRepo builds the Repo used by the commands. Tests replace it.
var newRepo = func() Repo { return git.NewClient() }

// hookResult is the outcome of one hook invocation. It is printed as JSON
// with --json and summarized as text otherwise.
type hookResult struct {
	Command     string             `json:"command"`
	Outcome     model.Outcome      `json:"outcome"`
	Branch      string             `json:"branch,omitempty"`
	Hotfix      bool               `json:"hotfix,omitempty"`
	Tickets     *branch.TicketPair `json:"tickets,omitempty"`
	Mode        model.Mode         `json:"mode,omitempty"`
	Appended    []string           `json:"appended,omitempty"`
	MessageFile string             `json:"messageFile,omitempty"`
}

// hookContext carries what both hook commands resolve before classifying
// the branch.
type hookContext struct {
	repo     Repo
	dir      string
	settings config.Settings
}

// newHookContext resolves configuration for the repository at repoDir.
// messageSource is the source argument git passes to prepare-commit-msg;
// it is only used when the hook framework did not export one.
func newHookContext(messageSource string) (*hookContext, error) {
	repo := newRepo()

	root, err := repo.RepoRoot(repoDir)
	if err != nil {
		return nil, err
	}
	VerboseLog("Resolved repository root", "root", root)

	settings, err := config.Resolve(root, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if !settings.HasMessageSource && messageSource != "" {
		settings.MessageSource = model.ParseMessageSource(messageSource)
		settings.HasMessageSource = true
	}
	VerboseLog("Resolved configuration",
		"mode", settings.Mode, "modeSource", settings.ModeSource,
		"configFile", settings.ConfigPath, "messageSource", settings.MessageSource)

	return &hookContext{repo: repo, dir: repoDir, settings: settings}, nil
}

// isMerge reports whether the commit concludes a merge, in which case the
// hooks do not check anything. Without an explicit message source the
// repository's MERGE_HEAD decides.
func (h *hookContext) isMerge() (bool, error) {
	if h.settings.HasMessageSource {
		return h.settings.MessageSource.IsMerge(), nil
	}
	return h.repo.IsMergeInProgress(h.dir)
}

// classify reads the current branch and classifies it. A rejected branch
// is returned as a CLIError with ExitRejectedBranch.
func (h *hookContext) classify() (branch.Result, error) {
	name, err := h.repo.CurrentBranch(h.dir)
	if err != nil {
		return branch.Result{}, err
	}
	if name == "" {
		warnf("HEAD is detached; there is no branch name to check")
	}

	result := branch.Classify(name)
	VerboseLog("Classified branch", "branch", name, "kind", result.Kind)

	if err := result.Err(); err != nil {
		return result, model.NewCLIError(model.ExitRejectedBranch, err.Error())
	}
	return result, nil
}

// printHookResult outputs res in the format selected by --json.
// Text output is only produced when the commit message was rewritten.
func printHookResult(w io.Writer, res hookResult) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if res.Outcome == model.OutcomeAppended && res.Tickets != nil {
		fmt.Fprintf(w, "Added %s to the commit message\n", res.Tickets.String())
	}
}
