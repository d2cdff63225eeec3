package message

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mmr-tortoise/prnj-hooks/internal/branch"
	"github.com/mmr-tortoise/prnj-hooks/internal/model"
)

const (
	// Scissors is the marker line below which git discards the message.
	Scissors = "# ------------------------ >8 ------------------------"

	// CommentChar starts the lines git strips from the final message.
	CommentChar = "#"
)

// ErrMissingIdentifiers is wrapped by the error of a Failed result.
var ErrMissingIdentifiers = errors.New("missing PRNJ/DEV identifiers")

var scissorsRe = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(Scissors))

// Kind tags the variant held by a Result.
type Kind string

const (
	// KindUnchanged means the message already carries both identifiers.
	KindUnchanged Kind = "unchanged"

	// KindAppended means the identifiers were appended to the message.
	KindAppended Kind = "appended"

	// KindFailed means identifiers are missing and the mode forbids
	// rewriting the message.
	KindFailed Kind = "failed"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// Result is the outcome of augmenting one commit message.
type Result struct {
	Kind Kind

	// Message is the message to keep. It equals the input for Unchanged
	// and Failed results.
	Message string

	// Missing lists the identifiers that were absent, in canonical order.
	Missing []string
}

// Err returns nil unless the result is Failed.
func (r Result) Err() error {
	if r.Kind != KindFailed {
		return nil
	}
	return fmt.Errorf("%w: did not find %s in commit message",
		ErrMissingIdentifiers, strings.Join(r.Missing, " and "))
}

// Split separates msg into the editable content and the scissors section.
// rest is empty when msg has no scissors line.
func Split(msg string) (content, rest string) {
	loc := scissorsRe.FindStringIndex(msg)
	if loc == nil {
		return msg, ""
	}
	return msg[:loc[0]], msg[loc[0]:]
}

// StripComments drops every line starting with CommentChar. git removes
// those lines after the commit-msg hook runs, so text in them never
// reaches the commit.
func StripComments(text string) string {
	lines := strings.SplitAfter(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, CommentChar) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "")
}

// Contains reports whether id appears in text as a whole token: the bytes
// around it must not be letters, digits or underscores.
func Contains(text, id string) bool {
	if id == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], id)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(id)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = i + 1
	}
}

// isWordByte matches the ASCII word characters of regexp's \w.
func isWordByte(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}

// MissingIDs returns the identifiers of pair that msg lacks, in canonical
// order. Comment lines and everything from the scissors line on are
// ignored.
func MissingIDs(pair branch.TicketPair, msg string) []string {
	content, _ := Split(msg)
	content = StripComments(content)

	var missing []string
	for _, id := range pair.IDs() {
		if !Contains(content, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// Augment ensures msg carries both identifiers of pair.
//
// When both are present the result is Unchanged in any mode. Otherwise
// auto-append mode appends "PRNJ-<n> DEV-<n>" after the trimmed content,
// and every other mode, including an invalid one, fails without touching
// the message. Both identifiers are appended even if only one was missing.
func Augment(pair branch.TicketPair, msg string, mode model.Mode) Result {
	missing := MissingIDs(pair, msg)
	if len(missing) == 0 {
		return Result{Kind: KindUnchanged, Message: msg}
	}

	switch mode {
	case model.ModeAutoAppend:
		return Result{Kind: KindAppended, Message: appendIDs(pair, msg), Missing: missing}
	default:
		return Result{Kind: KindFailed, Message: msg, Missing: missing}
	}
}

// appendIDs writes the identifier line at the end of the content above
// the scissors line.
func appendIDs(pair branch.TicketPair, msg string) string {
	content, rest := Split(msg)

	var b strings.Builder
	if trimmed := strings.TrimRight(content, " \t\r\n"); trimmed != "" {
		b.WriteString(trimmed)
		b.WriteString("\n\n")
	}
	b.WriteString(pair.String())

	if rest != "" {
		b.WriteString("\n")
		b.WriteString(rest)
	}
	return b.String()
}
