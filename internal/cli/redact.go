package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/scrub/internal/config"
	"github.com/dshills/scrub/internal/gitctx"
	"github.com/dshills/scrub/internal/jsonscrub"
	"github.com/dshills/scrub/internal/log"
	"github.com/dshills/scrub/internal/output"
	"github.com/dshills/scrub/internal/stream"
)

// Shared redaction flags
var (
	flagKeepExtensionURLs bool
	flagFormat            string
	flagOut               string
	flagWrite             bool

	flagStaged   bool
	flagUnstaged bool
	flagRange    string
	flagInclude  []string
	flagExclude  []string
)

var errInputTooLarge = errors.New("input exceeds maxInputBytes")

func addRedactFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&flagKeepExtensionURLs, "keep-extension-urls", false, "Leave moz-extension:// URLs untouched")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagKeepExtensionURLs {
		m["redactExtensionUrls"] = "false"
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	return m
}

// openOut returns the destination for command output and a func that
// closes it.
func openOut(cmd *cobra.Command) (io.Writer, func() error, error) {
	if flagOut == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(flagOut)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// readLimited reads all of r, failing once more than limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errInputTooLarge
	}
	return data, nil
}

func runtimeError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	exitCode = ExitRuntimeError
}

var textCmd = &cobra.Command{
	Use:   "text [words...]",
	Short: "Redact URLs in the given arguments or stdin",
	Long:  "Redact URLs in the arguments joined by spaces, or in stdin when no arguments are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		w, closeOut, err := openOut(cmd)
		if err != nil {
			runtimeError("%v", err)
			return nil
		}
		defer closeOut()

		if len(args) > 0 {
			out, _ := cfg.Policy().RedactMatches(strings.Join(args, " "))
			fmt.Fprintln(w, out)
			return nil
		}
		if _, err := stream.Copy(w, cmd.InOrStdin(), cfg.Policy()); err != nil {
			runtimeError("%v", err)
		}
		return nil
	},
}

var fileCmd = &cobra.Command{
	Use:   "file [paths...]",
	Short: "Redact URLs in files (or stdin)",
	Long: "Redact URLs in each file and write the result to stdout or --out. " +
		"With --write, each file is rewritten in place atomically.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagWrite && flagOut != "" {
			return errors.New("--write and --out are mutually exclusive")
		}
		if flagWrite && len(args) == 0 {
			return errors.New("--write requires at least one file")
		}
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		logger := log.WithComponent("cli")

		if flagWrite {
			for _, path := range args {
				stats, err := rewriteFile(path, cfg)
				if err != nil {
					runtimeError("%s: %v", path, err)
					return nil
				}
				logger.Debug().Str("path", path).Int("urls", stats.URLs).Int("lines", stats.Lines).Msg("rewrote file")
			}
			return nil
		}

		w, closeOut, err := openOut(cmd)
		if err != nil {
			runtimeError("%v", err)
			return nil
		}
		defer closeOut()

		if len(args) == 0 {
			args = []string{"-"}
		}
		for _, path := range args {
			stats, err := copyPath(w, cmd.InOrStdin(), path, cfg)
			if err != nil {
				runtimeError("%s: %v", path, err)
				return nil
			}
			logger.Debug().Str("path", path).Int("urls", stats.URLs).Int("lines", stats.Lines).Msg("redacted input")
		}
		return nil
	},
}

func copyPath(w io.Writer, stdin io.Reader, path string, cfg config.Config) (stream.Stats, error) {
	if path == "-" {
		return stream.Copy(w, stdin, cfg.Policy())
	}
	f, err := os.Open(path)
	if err != nil {
		return stream.Stats{}, err
	}
	defer f.Close()
	return stream.Copy(w, f, cfg.Policy())
}

// rewriteFile redacts path in place. The file is replaced atomically and
// keeps its permissions.
func rewriteFile(path string, cfg config.Config) (stream.Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stream.Stats{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return stream.Stats{}, err
	}
	defer f.Close()

	var buf bytes.Buffer
	stats, err := stream.Copy(&buf, f, cfg.Policy())
	if err != nil {
		return stats, err
	}
	if stats.URLs == 0 {
		return stats, nil
	}
	if err := renameio.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return stats, fmt.Errorf("replacing file: %w", err)
	}
	return stats, nil
}

var jsonCmd = &cobra.Command{
	Use:   "json [path]",
	Short: "Redact URLs in every string value of a JSON document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		var src io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				runtimeError("%v", err)
				return nil
			}
			defer f.Close()
			src = f
		}
		data, err := readLimited(src, cfg.MaxInputBytes)
		if err != nil {
			runtimeError("reading input: %v", err)
			return nil
		}

		out, counts, err := jsonscrub.Redact(data, cfg.Policy())
		if err != nil {
			runtimeError("%v", err)
			return nil
		}

		w, closeOut, err := openOut(cmd)
		if err != nil {
			runtimeError("%v", err)
			return nil
		}
		defer closeOut()
		if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
			runtimeError("writing output: %v", err)
			return nil
		}
		l := log.WithComponent("cli")
		l.Debug().Interface("urls", counts).Msg("redacted JSON document")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report URLs that would be redacted; exit 1 if any are found",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		switch modes := gitModes(); {
		case modes > 1:
			return errors.New("choose one of --staged, --unstaged or --range")
		case modes == 1 && len(args) > 0:
			return errors.New("file arguments cannot be combined with --staged, --unstaged or --range")
		}

		report := &stream.Report{Tool: "scrub", Version: version}
		if gitModes() == 1 {
			changes, err := gitChanges()
			if err != nil {
				runtimeError("%v", err)
				return nil
			}
			for _, c := range changes {
				fr := stream.FileReport{Path: c.Path}
				for _, added := range c.Added {
					fr.Scan(added.Line, added.Text, cfg.Policy())
				}
				report.Add(fr)
			}
		} else {
			if len(args) == 0 {
				args = []string{"-"}
			}
			for _, path := range args {
				fr, err := auditPath(cmd.InOrStdin(), path, cfg)
				if err != nil {
					runtimeError("%s: %v", path, err)
					return nil
				}
				report.Add(fr)
			}
		}

		if flagOut != "" {
			err = output.WriteReport(report, cfg.Format, flagOut)
		} else {
			var writer output.Writer
			if writer, err = output.GetWriter(cfg.Format); err == nil {
				err = writer.Write(cmd.OutOrStdout(), report)
			}
		}
		if err != nil {
			runtimeError("writing report: %v", err)
			return nil
		}

		if report.HasFindings() {
			exitCode = ExitFindings
		}
		return nil
	},
}

// gitModes counts the selected git modes.
func gitModes() int {
	n := 0
	for _, set := range []bool{flagStaged, flagUnstaged, flagRange != ""} {
		if set {
			n++
		}
	}
	return n
}

// gitChanges collects added lines for the selected git mode.
func gitChanges() ([]gitctx.FileChange, error) {
	opts := gitctx.Options{Include: flagInclude, Exclude: flagExclude}
	switch {
	case flagStaged:
		return gitctx.Staged(opts)
	case flagUnstaged:
		return gitctx.Unstaged(opts)
	default:
		return gitctx.Range(flagRange, opts)
	}
}

func auditPath(stdin io.Reader, path string, cfg config.Config) (stream.FileReport, error) {
	if path == "-" {
		return stream.Audit("stdin", stdin, cfg.Policy())
	}
	f, err := os.Open(path)
	if err != nil {
		return stream.FileReport{}, err
	}
	defer f.Close()
	return stream.Audit(path, f, cfg.Policy())
}

func init() {
	for _, cmd := range []*cobra.Command{textCmd, fileCmd, jsonCmd, checkCmd} {
		addRedactFlags(cmd)
	}
	fileCmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "Rewrite files in place")
	checkCmd.Flags().StringVar(&flagFormat, "format", "", "Report format (text, json, yaml, markdown, sarif)")
	checkCmd.Flags().BoolVar(&flagStaged, "staged", false, "Check only lines added in the index")
	checkCmd.Flags().BoolVar(&flagUnstaged, "unstaged", false, "Check only lines added in the working tree")
	checkCmd.Flags().StringVar(&flagRange, "range", "", "Check only lines added in a revision range (e.g. origin/main..HEAD)")
	checkCmd.Flags().StringSliceVar(&flagInclude, "include", nil, "Glob patterns of files to check in git modes")
	checkCmd.Flags().StringSliceVar(&flagExclude, "exclude", nil, "Glob patterns of files to skip in git modes")
}
