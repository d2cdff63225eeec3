package branch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pattern is the naming convention shown to users in rejection messages.
const Pattern = "[hotfix-]PRNJ-<number>-DEV-<number>-<description>"

// ExemptPrefixes are the branch prefixes that bypass the naming convention.
var ExemptPrefixes = []string{"wip", "hack", "poc"}

var (
	// ErrRejected is wrapped by every classification failure.
	ErrRejected = errors.New("branch name does not follow the standard")

	// ErrEmptyBranch is returned for an empty branch name. It wraps ErrRejected.
	ErrEmptyBranch = fmt.Errorf("%w: branch name is empty", ErrRejected)
)

var (
	// branchRe must consume the whole name so that a description holding a
	// second ticket pattern cannot shift the match.
	branchRe = regexp.MustCompile(`^(hotfix-)?PRNJ-([0-9]+)-DEV-([0-9]+)-(.+)$`)

	prnjRe          = regexp.MustCompile(`PRNJ-[0-9]+`)
	devRe           = regexp.MustCompile(`DEV-[0-9]+`)
	noDescriptionRe = regexp.MustCompile(`^(?:hotfix-)?PRNJ-[0-9]+-DEV-[0-9]+-?$`)
)

// Kind tags the variant held by a Result.
type Kind string

const (
	// KindExempt means the branch carries an exemption prefix.
	KindExempt Kind = "exempt"

	// KindMatched means the branch follows the naming convention.
	KindMatched Kind = "matched"

	// KindRejected means the branch is neither exempt nor matched.
	KindRejected Kind = "rejected"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// TicketPair holds the ticket numbers extracted from a matched branch.
type TicketPair struct {
	// PRNJ is the digit sequence following "PRNJ-".
	PRNJ string `json:"prnj"`

	// DEV is the digit sequence following "DEV-".
	DEV string `json:"dev"`
}

// PRNJID returns the rendered PRNJ identifier, e.g. "PRNJ-123".
func (p TicketPair) PRNJID() string {
	return "PRNJ-" + p.PRNJ
}

// DEVID returns the rendered DEV identifier, e.g. "DEV-456".
func (p TicketPair) DEVID() string {
	return "DEV-" + p.DEV
}

// IDs returns both identifiers in canonical order.
func (p TicketPair) IDs() []string {
	return []string{p.PRNJID(), p.DEVID()}
}

// String renders the pair as a single canonical line: "PRNJ-<n> DEV-<n>".
func (p TicketPair) String() string {
	return strings.Join(p.IDs(), " ")
}

// Result is the outcome of classifying one branch name.
// Tickets is only set for KindMatched; Reasons only for KindRejected.
type Result struct {
	Kind    Kind
	Branch  string
	Hotfix  bool
	Tickets TicketPair
	Reasons []string
}

// Err returns nil unless the branch was rejected. Rejection errors wrap
// ErrRejected and carry a message that names the required pattern.
func (r Result) Err() error {
	if r.Kind != KindRejected {
		return nil
	}
	if r.Branch == "" {
		return ErrEmptyBranch
	}
	return fmt.Errorf("%w: %s (branch %q, expected %s or a %s prefix)",
		ErrRejected, strings.Join(r.Reasons, ", "), r.Branch, Pattern,
		strings.Join(ExemptPrefixes, "/"))
}

// Classify decides whether name is exempt, matches the naming convention,
// or is rejected.
func Classify(name string) Result {
	if name == "" {
		return Result{Kind: KindRejected, Reasons: []string{"branch name is empty"}}
	}

	if IsExempt(name) {
		return Result{Kind: KindExempt, Branch: name}
	}

	if m := branchRe.FindStringSubmatch(name); m != nil {
		return Result{
			Kind:    KindMatched,
			Branch:  name,
			Hotfix:  m[1] != "",
			Tickets: TicketPair{PRNJ: m[2], DEV: m[3]},
		}
	}

	return Result{Kind: KindRejected, Branch: name, Reasons: rejectionReasons(name)}
}

// IsExempt reports whether name starts with one of ExemptPrefixes followed
// by "-", "/" or the end of the string. Matching is case-sensitive.
func IsExempt(name string) bool {
	for _, prefix := range ExemptPrefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if rest == "" || rest[0] == '-' || rest[0] == '/' {
			return true
		}
	}
	return false
}

// rejectionReasons explains why name failed to match branchRe.
func rejectionReasons(name string) []string {
	foundPRNJ := prnjRe.MatchString(name)
	foundDEV := devRe.MatchString(name)

	var reasons []string
	if !foundPRNJ {
		reasons = append(reasons, "could not find PRNJ-number")
	}
	if !foundDEV {
		reasons = append(reasons, "could not find DEV-number")
	}
	switch {
	case noDescriptionRe.MatchString(name):
		reasons = append(reasons, "could not find a branch description")
	case foundPRNJ && foundDEV:
		reasons = append(reasons, "PRNJ-number and DEV-number are wrongly placed")
	}
	return reasons
}
