// Package config resolves the hook's Mode and message source.
//
// The Mode comes from, in increasing precedence:
//   - the built-in default (auto-append)
//   - an optional repository file: .prnj-hooks.yaml, .prnj-hooks.yml or
//     .prnj-hooks.json (JSON with comments), with a "mode" key
//     ("auto-append" or "verify-only") or a boolean "autoAppend" key
//   - the PRNJ_BRANCH_COMMIT_MSG_AUTO_APPEND environment variable
//
// Command flags may override the result afterwards; that happens in the
// cli package. Core packages never read the environment themselves.
package config
