package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/modelguard/internal/checker"
	"github.com/mvp-joe/modelguard/internal/discovery"
	"github.com/mvp-joe/modelguard/internal/report"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report model usage without a matching import",
	Long: `Check JavaScript and TypeScript files for capitalized model identifiers
used with ORM-style methods that are never imported or required in the file.

With no paths, every file under the project root matching paths.include
(and not paths.ignore) is checked. Exits with status 1 when findings remain.

Examples:
  modelguard check
  modelguard check src/services --format json
  modelguard check --fix
  modelguard check --watch`,
	RunE: runCheck,
}

var (
	checkFormat    string
	checkWatch     bool
	checkFix       bool
	checkQuiet     bool
	checkShowFixes bool
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", report.FormatText, "output format: text or json")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "keep running and re-check files as they change")
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "insert missing model imports")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "suppress progress and clean-run output")
	checkCmd.Flags().BoolVar(&checkShowFixes, "show-fixes", false, "include the import each fix would insert")
}

// checkOptions collects everything executeCheck needs.
type checkOptions struct {
	root      string
	cfgFile   string
	paths     []string
	format    string
	watch     bool
	fix       bool
	quiet     bool
	showFixes bool
	verbose   bool
	color     bool
	progress  bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeCheck(ctx, checkOptions{
		root:      root,
		cfgFile:   cfgFile,
		paths:     args,
		format:    checkFormat,
		watch:     checkWatch,
		fix:       checkFix,
		quiet:     checkQuiet,
		showFixes: checkShowFixes,
		verbose:   viper.GetBool("verbose"),
		color:     !color.NoColor,
		progress:  !color.NoColor && checkFormat == report.FormatText,
	}, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// executeCheck runs a check and writes the report to stdout. It returns
// ErrFindingsFound when findings remain and watch mode is off.
func executeCheck(ctx context.Context, opts checkOptions, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts.root, opts.cfgFile)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, opts.verbose)

	c, err := checker.New(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	fd, err := discovery.NewFileDiscovery(opts.root, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}

	reportOpts := report.Options{
		Color:   opts.color,
		Quiet:   opts.quiet,
		BaseDir: fd.RootDir(),
	}
	if opts.showFixes {
		reportOpts.Preview = c.PreviewFix
	}
	reporter, err := report.ForFormat(opts.format, reportOpts)
	if err != nil {
		return err
	}

	files, err := fd.Expand(opts.paths)
	if err != nil {
		return err
	}
	logger.WithField("files", len(files)).Debug("discovered files")

	// The watcher starts paused before the first pass so edits made during it
	// are delivered afterwards.
	var session *watchSession
	if opts.watch {
		if cfg.Host.CheckOnChange {
			session, err = newWatchSession(ctx, c, cfg, fd, reporter, opts, stdout, stderr, logger)
			if err != nil {
				return err
			}
			defer session.close()
		} else {
			logger.Warn("host.check_on_change is disabled; not watching for changes")
		}
	}

	progress := NewCheckProgressReporter(stderr, opts.quiet || !opts.progress)
	start := time.Now()
	progress.OnCheckStart(len(files))

	results, err := c.CheckFiles(ctx, files, progress.OnFileChecked)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	progress.OnCheckComplete(time.Since(start))

	if opts.fix {
		if err := fixResults(ctx, c, results, fd.RootDir(), opts.quiet, stderr, session.selfWrites()); err != nil {
			return err
		}
	}

	rep := report.New(results)
	if err := reporter.Write(stdout, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if opts.watch {
		if session != nil {
			session.run()
		}
		return nil
	}

	if rep.Total() > 0 {
		return ErrFindingsFound
	}
	return nil
}

// fixResults applies FixAll to every result with findings, updating each
// result with what remains. Written contents are recorded in writes when it
// is non-nil.
func fixResults(ctx context.Context, c *checker.Checker, results []checker.Result, root string, quiet bool, stderr io.Writer, writes *selfWrites) error {
	for i := range results {
		if len(results[i].Findings) == 0 {
			continue
		}

		outcome, err := c.FixAll(ctx, results[i].Document)
		if err != nil {
			return fmt.Errorf("failed to fix %s: %w", results[i].Document, err)
		}
		results[i].Findings = outcome.Remaining
		if outcome.Written {
			writes.record(outcome.Document, outcome.Content)
		}

		if !quiet {
			names := make([]string, 0, len(outcome.Applied))
			for _, fix := range outcome.Applied {
				names = append(names, fix.Target)
			}
			fmt.Fprintf(stderr, "Fixed %s: imported %s\n", relPath(root, results[i].Document), strings.Join(names, ", "))
		}
	}
	return nil
}
