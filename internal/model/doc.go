// Package model defines the value types shared by the prnj-hooks CLI.
//
// Every entity here lives for a single hook invocation: a branch name and
// commit message are read, classified, possibly rewritten once, and then
// discarded at process exit. Nothing is persisted.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
