package gitctx

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Options filters which files are reported.
type Options struct {
	Include []string
	Exclude []string
}

// AddedLine is one line introduced by a change. Line is 1-based in the new
// version of the file.
type AddedLine struct {
	Line int
	Text string
}

// FileChange holds the added lines of one file.
type FileChange struct {
	Path  string
	Added []AddedLine
}

var diffArgs = []string{"diff", "-U0", "--no-color", "--no-ext-diff", "--diff-filter=ACMR"}

// Staged returns the lines added in the index relative to HEAD.
func Staged(opts Options) ([]FileChange, error) {
	return changes(opts, "--cached")
}

// Unstaged returns the lines added in the working tree relative to the index.
func Unstaged(opts Options) ([]FileChange, error) {
	return changes(opts)
}

// Range returns the lines added across a revision range such as
// "origin/main..HEAD".
func Range(revRange string, opts Options) ([]FileChange, error) {
	if revRange == "" || strings.HasPrefix(revRange, "-") {
		return nil, fmt.Errorf("invalid revision range %q", revRange)
	}
	return changes(opts, revRange)
}

func changes(opts Options, extra ...string) ([]FileChange, error) {
	args := append(append(append([]string{}, diffArgs...), extra...), "--")
	diff, err := gitOutput(args...)
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return Filter(ParseDiff(diff), opts), nil
}

// ParseDiff extracts the added lines of every file in a unified diff.
// Files with no added lines are omitted.
func ParseDiff(diff string) []FileChange {
	var (
		out     []FileChange
		current *FileChange
		inHunk  bool
		next    int
	)
	flush := func() {
		if current != nil && len(current.Added) > 0 {
			out = append(out, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
			inHunk = false
		case !inHunk && strings.HasPrefix(line, "+++ "):
			path := strings.TrimPrefix(line, "+++ ")
			if path == "/dev/null" {
				continue
			}
			current = &FileChange{Path: unquotePath(path)}
		case strings.HasPrefix(line, "@@"):
			start, ok := hunkStart(line)
			inHunk = ok && current != nil
			next = start
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			current.Added = append(current.Added, AddedLine{Line: next, Text: line[1:]})
			next++
		case strings.HasPrefix(line, " "):
			next++
		}
	}
	flush()
	return out
}

// hunkStart reads the new-file start line from "@@ -a,b +c,d @@".
func hunkStart(header string) (int, bool) {
	fields := strings.Fields(header)
	if len(fields) < 3 || !strings.HasPrefix(fields[2], "+") {
		return 0, false
	}
	first, _, _ := strings.Cut(fields[2][1:], ",")
	n, err := strconv.Atoi(first)
	if err != nil {
		return 0, false
	}
	return n, true
}

// unquotePath strips git's quoting, the tab git appends to names holding
// spaces and the "b/" prefix.
func unquotePath(p string) string {
	p = strings.TrimRight(p, "\t")
	if strings.HasPrefix(p, `"`) {
		if s, err := strconv.Unquote(p); err == nil {
			p = s
		}
	}
	return strings.TrimPrefix(p, "b/")
}

// Filter keeps the changes whose path passes the include and exclude
// patterns. An empty Include keeps everything.
func Filter(changes []FileChange, opts Options) []FileChange {
	var kept []FileChange
	for _, c := range changes {
		if len(opts.Include) > 0 && !MatchesAny(c.Path, opts.Include) {
			continue
		}
		if MatchesAny(c.Path, opts.Exclude) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" matches at any depth.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean == pattern {
			continue
		}
		if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(clean, path); err == nil && matched {
			return true
		}
	}
	return false
}

func gitOutput(args ...string) (string, error) {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
