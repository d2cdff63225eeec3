// check_branch.go implements the "prnj-hooks check-branch"
// command.
//
// check-branch is meant for the prepare-commit-msg stage. It only verifies
// the branch name, so a badly named branch is reported before the user
// writes a commit message.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/prnj-hooks/internal/branch"
	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

// NewCheckBranchCommand creates the "check-branch" cobra command.
func NewCheckBranchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-branch [commit-msg-file [source [sha]]]",
		Short: "Check that the current branch follows the naming convention",
		Long: `Check that the current branch is exempt (wip, hack or poc prefix) or
named [hotfix-]PRNJ-<number>-DEV-<number>-<description>.

The arguments are the ones git passes to a prepare-commit-msg hook. The
commit message file is not read. When the source argument is "merge"
the check is skipped.

Examples:
  prnj-hooks check-branch .git/COMMIT_EDITMSG
  prnj-hooks check-branch --json`,

		Args: cobra.RangeArgs(0, 3),

		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) > 1 {
				source = args[1]
			}
			res, err := runCheckBranch(source)
			if err != nil {
				return err
			}
			printHookResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	return cmd
}

// runCheckBranch is the main logic function for the check-branch command.
func runCheckBranch(messageSource string) (hookResult, error) {
	res := hookResult{Command: "check-branch"}

	// Step 1: Resolve configuration and the commit message source.
	h, err := newHookContext(messageSource)
	if err != nil {
		return res, err
	}

	// Step 2: Merge commits are never checked.
	merge, err := h.isMerge()
	if err != nil {
		return res, err
	}
	if merge {
		VerboseLog("Merge commit, skipping branch check")
		res.Outcome = model.OutcomeSkipped
		return res, nil
	}

	// Step 3: Classify the branch.
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

	res.Outcome = model.OutcomeMatched
	res.Hotfix = result.Hotfix
	res.Tickets = &result.Tickets
	return res, nil
}
