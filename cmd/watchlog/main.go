// Package main provides the watchlog CLI for summarizing and inspecting
// YouTube watch-history exports.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"watchlog/internal/format"
	"watchlog/internal/history"
	"watchlog/internal/htmlexport"
	_ "watchlog/internal/jsonexport" // registers the json parser
	"watchlog/internal/model"
	"watchlog/internal/scan"
	"watchlog/internal/view"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "watchlog",
	Short:   "Summarize, inspect, and validate YouTube watch-history exports",
	Version: version,
}

func init() {
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newCheckCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "watchlog: %v\n", err)
		os.Exit(1)
	}
}

func newReportCmd() *cobra.Command {
	var (
		source     string
		top        int
		formatFlag string
		noHeader   bool
		cachePath  string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "report <history-file>",
		Short: "Show history totals and the most watched videos and channels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadLibrary(cmd, args[0], source, cachePath, noCache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, format.Summary(lib))

			includeHeader := !noHeader
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Top %d most watched videos\n", top)
			if err := format.WriteTopVideos(out, lib.TopVideos(top), includeHeader, formatFlag); err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Top %d most watched channels\n", top)
			return format.WriteTopChannels(out, lib.TopChannels(top), includeHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&source, "source", "", "input format: html or json (default: by file extension)")
	flags.IntVar(&top, "top", 10, "number of videos and channels to rank")
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header rows")
	flags.StringVar(&cachePath, "cache", "", "cache file path (default: <history-file>.cache.json)")
	flags.BoolVar(&noCache, "no-cache", false, "do not read or write the parse cache")

	return cmd
}

func newDumpCmd() *cobra.Command {
	var (
		source       string
		formatFlag   string
		limit        int
		width        int
		noHeader     bool
		forceColor   bool
		forceNoColor bool
		cachePath    string
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "dump <history-file>",
		Short: "List watch events in chronological order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			lib, err := loadLibrary(cmd, args[0], source, cachePath, noCache)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strings.ToLower(formatFlag) == "text" {
				outFile, _ := out.(*os.File)
				return view.Run(lib, view.Options{
					Limit:        limit,
					Width:        width,
					ForceColor:   forceColor,
					ForceNoColor: forceNoColor,
					Out:          out,
					OutFile:      outFile,
				})
			}
			return format.WriteWatches(out, lib, limit, !noHeader, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&source, "source", "", "input format: html or json (default: by file extension)")
	flags.StringVar(&formatFlag, "format", "text", "output format: text, table, plain, json, or jsonl")
	flags.IntVar(&limit, "limit", 0, "show only the most recent N watches (0 means all)")
	flags.IntVar(&width, "width", 0, "output width for text format (0 means autodetect)")
	flags.BoolVar(&noHeader, "no-header", false, "omit header rows for table and plain output")
	flags.BoolVar(&forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")
	flags.StringVar(&cachePath, "cache", "", "cache file path (default: <history-file>.cache.json)")
	flags.BoolVar(&noCache, "no-cache", false, "do not read or write the parse cache")

	return cmd
}

func newCheckCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "check <history-file>",
		Short: "Parse an export and report diagnostics without caching",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := parseFile(args[0], source)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), describeError(err))
				return fmt.Errorf("%s does not parse", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records\n", args[0], len(records))
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVar(&source, "source", "", "input format: html or json (default: by file extension)")

	return cmd
}

// resolveSource picks the input format from the flag or, failing that,
// the file extension.
func resolveSource(path, source string) (model.SourceFormat, error) {
	switch strings.ToLower(source) {
	case "":
		return model.FormatForPath(path)
	case "html":
		return model.SourceHTML, nil
	case "json":
		return model.SourceJSON, nil
	default:
		return "", fmt.Errorf("invalid --source value: %s", source)
	}
}

func parseFile(path, source string) ([]model.Record, error) {
	sourceFormat, err := resolveSource(path, source)
	if err != nil {
		return nil, err
	}

	parser, err := model.NewParser(sourceFormat)
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	return parser.Parse(file)
}

// loadLibrary returns the parsed history, preferring the cache when it is
// usable. Cache problems are warnings: the export is reparsed and the
// cache rewritten.
func loadLibrary(cmd *cobra.Command, path, source, cachePath string, noCache bool) (*history.Library, error) {
	if cachePath == "" {
		cachePath = path + ".cache.json"
	}
	errs := cmd.ErrOrStderr()

	if !noCache {
		if lib, err := loadCache(cachePath); err == nil {
			return lib, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(errs, "warning: ignoring cache: %v\n", err)
		}
	}

	records, err := parseFile(path, source)
	if err != nil {
		return nil, err
	}

	lib := history.New()
	lib.AddAll(records)

	if !noCache {
		if err := writeCache(cachePath, lib); err != nil {
			fmt.Fprintf(errs, "warning: cannot write cache: %v\n", err)
		}
	}

	return lib, nil
}

func loadCache(path string) (*history.Library, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return history.DecodeJSON(file)
}

func writeCache(path string, lib *history.Library) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := lib.EncodeJSON(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// describeError renders the structured parse errors in a form suited for
// a terminal, one detail per line.
func describeError(err error) string {
	var (
		unterminated *scan.UnterminatedError
		invalid      *scan.InvalidUTF8Error
		ioFailure    *scan.IOError
		dateErr      *htmlexport.DateError
	)

	switch {
	case errors.Is(err, htmlexport.ErrNoRecords):
		return "no records: the input contains no watch anchor at all"

	case errors.As(err, &dateErr):
		return strings.Join([]string{
			"unparseable watch time",
			fmt.Sprintf("  text:   %q", dateErr.Text),
			fmt.Sprintf("  at:     %s", dateErr.Location),
			fmt.Sprintf("  cause:  %v", dateErr.Err),
		}, "\n")

	case errors.As(err, &unterminated):
		lines := []string{
			"unterminated input",
			fmt.Sprintf("  expected: %q", unterminated.Expected),
		}
		if unterminated.Closest != "" {
			lines = append(lines,
				fmt.Sprintf("  closest:  %q", unterminated.Closest),
				fmt.Sprintf("  at:       %s", unterminated.ClosestLocation))
		}
		return strings.Join(lines, "\n")

	case errors.As(err, &invalid):
		return strings.Join([]string{
			"invalid utf-8 in input",
			fmt.Sprintf("  bytes:  % X", invalid.Bytes),
			fmt.Sprintf("  at:     %s", invalid.Location),
		}, "\n")

	case errors.As(err, &ioFailure):
		return strings.Join([]string{
			"read failure",
			fmt.Sprintf("  at:     %s", ioFailure.Location),
			fmt.Sprintf("  cause:  %v", ioFailure.Err),
		}, "\n")
	}

	return err.Error()
}
