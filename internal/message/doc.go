// Package message checks commit messages for ticket identifiers and
// appends the ones that are missing.
//
// Only the part of the message above git's scissors line
// ("# ------------------------ >8 ------------------------", written by
// `git commit --verbose`) is searched and extended. Everything from the
// scissors line on is carried over untouched. Lines starting with "#" are
// not searched either: git's status block ("# On branch PRNJ-1-DEV-2-x")
// names the identifiers but is stripped before the commit is recorded.
//
// An identifier counts as present when it appears as a whole token: the
// message "PRNJ-12" does not satisfy "PRNJ-1". Identifiers are appended as
// one line, "PRNJ-<n> DEV-<n>", separated from existing text by a blank
// line.
package message
