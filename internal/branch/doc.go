// Package branch classifies git branch names against the PRNJ/DEV naming
// convention.
//
// A branch is either exempt (it starts with wip, hack or poc followed by
// "-", "/" or nothing), matched (it is exactly
// [hotfix-]PRNJ-<n>-DEV-<n>-<description>), or rejected. Classification is
// a pure function of the branch name: reading the name from git is the
// caller's job.
//
// Ticket numbers keep their exact digit sequence. "PRNJ-007" yields the
// number "007", and identifiers are always compared as strings.
package branch
