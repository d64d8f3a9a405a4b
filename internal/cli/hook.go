package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> scrub pre-commit hook >>>"
	hookMarkerEnd   = "# <<< scrub pre-commit hook <<<"
)

var (
	hookFormat     string
	hookWarnOnly   bool
	hookExtensions bool
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install scrub as a git pre-commit hook that blocks commits adding URLs",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			runtimeError("%v", err)
			return nil
		}

		section := generateHookScript(hookFormat, hookWarnOnly, hookExtensions)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			runtimeError("reading hook file: %v", err)
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceScrubSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			runtimeError("creating hooks directory: %v", err)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			runtimeError("writing hook file: %v", err)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed scrub pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove scrub pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath()
		if err != nil {
			runtimeError("%v", err)
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "No pre-commit hook found.")
				return nil
			}
			runtimeError("reading hook file: %v", err)
			return nil
		}

		content := removeScrubSection(string(existing))

		// A hook holding only a shebang is deleted
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				runtimeError("removing hook file: %v", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed scrub pre-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			runtimeError("writing hook file: %v", err)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed scrub section from %s\n", hookPath)
		return nil
	},
}

func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-dir").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-dir failed)")
	}
	gitDir := strings.TrimSpace(string(out))
	return filepath.Join(gitDir, "hooks", "pre-commit"), nil
}

func generateHookScript(format string, warnOnly, keepExtensions bool) string {
	args := "--staged --format " + format
	if keepExtensions {
		args += " --keep-extension-urls"
	}
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	fmt.Fprintf(&b, "scrub check %s\n", args)
	b.WriteString("SCRUB_EXIT=$?\n")
	b.WriteString("if [ $SCRUB_EXIT -eq 1 ]; then\n")
	if warnOnly {
		b.WriteString("  echo \"scrub: staged changes add URLs\"\n")
	} else {
		b.WriteString("  echo \"scrub: staged changes add URLs, commit blocked (scrub file --write redacts them)\"\n")
		b.WriteString("  exit 1\n")
	}
	b.WriteString("elif [ $SCRUB_EXIT -ge 2 ]; then\n")
	b.WriteString("  echo \"scrub: check failed (exit $SCRUB_EXIT), allowing commit\"\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceScrubSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeScrubSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookFormat, "format", "text", "Report format (text, json, yaml, markdown, sarif)")
	hookInstallCmd.Flags().BoolVar(&hookWarnOnly, "warn-only", false, "Report URLs without blocking the commit")
	hookInstallCmd.Flags().BoolVar(&hookExtensions, "keep-extension-urls", false, "Ignore moz-extension:// URLs")
}
