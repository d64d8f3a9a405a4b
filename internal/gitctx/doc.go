// Package gitctx collects the lines a git change adds, so that URL checks
// can be limited to new content.
//
// [Staged], [Unstaged] and [Range] shell out to git for a zero-context
// unified diff and parse it with [ParseDiff]. Results are filtered by
// include/exclude glob patterns (see [MatchesAny]).
package gitctx
