// check_message.go implements the "prnj-hooks check-message"
// command.
//
// check-message is meant for the commit-msg stage. It classifies the
// current branch and then makes sure the commit message carries the
// branch's PRNJ and DEV identifiers, appending them in auto-append mode
// or failing the commit in verify-only mode.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/prnj-hooks/internal/branch"
	"github.com/mmr-tortoise/prnj-hooks/internal/config"
	"github.com/mmr-tortoise/prnj-hooks/internal/message"
	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

// checkMessageFlags holds the flag values for the check-message command.
type checkMessageFlags struct {
	// verifyOnly forces verify-only mode regardless of configuration.
	verifyOnly bool
}

// NewCheckMessageCommand creates the "check-message" cobra command.
func NewCheckMessageCommand() *cobra.Command {
	flags := &checkMessageFlags{}

	cmd := &cobra.Command{
		Use:   "check-message <commit-msg-file>",
		Short: "Ensure the commit message carries the branch's ticket identifiers",
		Long: `Ensure the commit message carries the PRNJ and DEV identifiers taken
from the current branch name.

In auto-append mode (the default) missing identifiers are appended to the
message as a final "PRNJ-<number> DEV-<number>" line. In verify-only mode
(--verify-only, PRNJ_BRANCH_COMMIT_MSG_AUTO_APPEND=0, or autoAppend: false
in .prnj-hooks.yaml) the commit fails instead.

Branches with a wip, hack or poc prefix and merge commits are not checked.

Examples:
  prnj-hooks check-message .git/COMMIT_EDITMSG
  PRNJ_BRANCH_COMMIT_MSG_AUTO_APPEND=0 prnj-hooks check-message .git/COMMIT_EDITMSG`,

		// git passes the commit message file as the only argument.
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runCheckMessage(flags, args[0])
			if err != nil {
				return err
			}
			printHookResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.verifyOnly, "verify-only", false,
		"Fail instead of appending missing identifiers")

	return cmd
}

// runCheckMessage is the main logic function for the check-message command.
// It follows the state machine Classify → Augment → rewrite, stopping
// early on exempt branches and merge commits.
func runCheckMessage(flags *checkMessageFlags, path string) (hookResult, error) {
	res := hookResult{Command: "check-message", MessageFile: path}

	// Step 1: Resolve configuration. The flag wins over file and environment.
	h, err := newHookContext("")
	if err != nil {
		return res, err
	}
	if flags.verifyOnly {
		h.settings.Mode = model.ModeVerifyOnly
		h.settings.ModeSource = config.SourceFlag
		VerboseLog("Mode forced by flag", "mode", h.settings.Mode)
	}
	res.Mode = h.settings.Mode

	// Step 2: Merge commits are never checked.
	merge, err := h.isMerge()
	if err != nil {
		return res, err
	}
	if merge {
		VerboseLog("Merge commit, skipping message check")
		res.Outcome = model.OutcomeSkipped
		return res, nil
	}

	// Step 3: Classify the branch. Exempt branches need no identifiers,
	// so the message file is not even read.
	result, err := h.classify()
	if err != nil {
		if result.Kind == branch.KindRejected {
			res.Outcome = model.OutcomeRejected
		}
		return res, err
	}
	res.Branch = result.Branch
	if result.Kind == branch.KindExempt {
		res.Outcome = model.OutcomeExempt
		return res, nil
	}
	res.Hotfix = result.Hotfix
	res.Tickets = &result.Tickets

	// Step 4: Read the draft message.
	data, err := os.ReadFile(path)
	if err != nil {
		return res, model.WrapCLIError(model.ExitIOFailure,
			fmt.Sprintf("cannot read commit message file %s", path), err)
	}

	// Step 5: Check and possibly augment the message.
	aug := message.Augment(result.Tickets, string(data), h.settings.Mode)
	VerboseLog("Checked commit message", "result", aug.Kind, "missing", aug.Missing)

	switch aug.Kind {
	case message.KindUnchanged:
		res.Outcome = model.OutcomeUnchanged
		return res, nil

	case message.KindFailed:
		res.Outcome = model.OutcomeFailed
		return res, model.NewCLIError(model.ExitMissingIdentifiers, aug.Err().Error())
	}

	// Step 6: Rewrite the file in place, keeping its permissions.
	if err := writeMessage(path, aug.Message); err != nil {
		return res, err
	}
	VerboseLog("Rewrote commit message file", "path", path)

	res.Outcome = model.OutcomeAppended
	res.Appended = result.Tickets.IDs()
	return res, nil
}

// writeMessage replaces the contents of the commit message file at path.
func writeMessage(path, msg string) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return model.WrapCLIError(model.ExitIOFailure,
			fmt.Sprintf("cannot stat commit message file %s", path), err)
	}

	if err := os.WriteFile(path, []byte(msg), perm); err != nil {
		return model.WrapCLIError(model.ExitIOFailure,
			fmt.Sprintf("cannot write commit message file %s", path), err)
	}
	return nil
}
