package model

import (
	"fmt"
	"strings"
)

// Mode selects what the commit-msg hook does when the commit message is
// missing the ticket identifiers extracted from the branch name.
type Mode string

const (
	// ModeAutoAppend writes the missing identifiers to the end of the
	// commit message. This is the default.
	ModeAutoAppend Mode = "auto-append"

	// ModeVerifyOnly leaves the message untouched and fails the commit.
	ModeVerifyOnly Mode = "verify-only"
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks whether the Mode value is one of the predefined modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAutoAppend, ModeVerifyOnly:
		return true
	default:
		return false
	}
}

// ParseMode converts a string to a Mode.
// Returns an error if the string does not match any valid mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid mode: %q (valid: auto-append, verify-only)", s)
	}
	return mode, nil
}

// ModeFromAutoAppend maps the boolean auto-append setting onto a Mode.
func ModeFromAutoAppend(autoAppend bool) Mode {
	if autoAppend {
		return ModeAutoAppend
	}
	return ModeVerifyOnly
}

// Outcome is the final state an invocation ends in. The state machine is:
//
//	Start → Classify → Exempt → success
//	                 → Matched → Augment → Unchanged | Appended → success
//	                                     → Failed → failure
//	                 → Rejected → failure
//
// Skipped is reached before classification when the commit is a merge.
type Outcome string

const (
	// OutcomeSkipped means the hook did not run its checks (merge commit).
	OutcomeSkipped Outcome = "skipped"

	// OutcomeExempt means the branch carries an exemption prefix.
	OutcomeExempt Outcome = "exempt"

	// OutcomeMatched means the branch follows the naming pattern. Used by
	// check-branch, which stops after classification.
	OutcomeMatched Outcome = "matched"

	// OutcomeUnchanged means the message already holds both identifiers.
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeAppended means the identifiers were written to the message.
	OutcomeAppended Outcome = "appended"

	// OutcomeRejected means the branch name does not follow the pattern.
	OutcomeRejected Outcome = "rejected"

	// OutcomeFailed means verify-only mode found identifiers missing.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	return string(o)
}

// MessageSource is the origin of the commit message as reported by the
// hook framework through PRE_COMMIT_COMMIT_MSG_SOURCE (the second argument
// git passes to prepare-commit-msg).
type MessageSource string

const (
	// SourceMessage means the message came from -m or -F.
	SourceMessage MessageSource = "message"

	// SourceTemplate means the message came from a commit template.
	SourceTemplate MessageSource = "template"

	// SourceMerge means the commit concludes a merge.
	SourceMerge MessageSource = "merge"

	// SourceSquash means the message was prepared by a squash.
	SourceSquash MessageSource = "squash"

	// SourceCommit means the message was taken from an existing commit
	// (-c, -C or --amend).
	SourceCommit MessageSource = "commit"

	// SourceNone means a plain `git commit` or an unknown source.
	SourceNone MessageSource = ""
)

// ParseMessageSource converts a string to a MessageSource. Unknown values
// map to SourceNone, matching how git treats a plain `git commit`.
func ParseMessageSource(s string) MessageSource {
	switch src := MessageSource(s); src {
	case SourceMessage, SourceTemplate, SourceMerge, SourceSquash, SourceCommit:
		return src
	default:
		return SourceNone
	}
}

// IsMerge reports whether the message belongs to a merge commit.
func (s MessageSource) IsMerge() bool {
	return s == SourceMerge
}

// ExitCode defines the process exit codes of the hook. Any non-zero code
// makes git abort the commit.
type ExitCode int

const (
	// ExitSuccess indicates the commit may proceed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitRejectedBranch indicates the branch name is not exempt and does
	// not follow the naming pattern.
	ExitRejectedBranch ExitCode = 2

	// ExitMissingIdentifiers indicates verify-only mode found the commit
	// message lacking the branch's ticket identifiers.
	ExitMissingIdentifiers ExitCode = 3

	// ExitIOFailure indicates the commit message file could not be read
	// or written.
	ExitIOFailure ExitCode = 4

	// ExitGitError indicates a git query (current branch, merge state) failed.
	ExitGitError ExitCode = 5

	// ExitConfigError indicates the repository config file is malformed.
	ExitConfigError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
