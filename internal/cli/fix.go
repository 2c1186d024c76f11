package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/modelguard/internal/checker"
)

// fixCmd represents the fix command
var fixCmd = &cobra.Command{
	Use:   "fix <file> [identifier]",
	Short: "Insert a missing model import",
	Long: `Insert import <Name> from "./models/<Name>"; after the last import or
require at the top of the file.

With an identifier, only that model is imported. Without one, every
model flagged in the file gets exactly one import.

Examples:
  modelguard fix src/services/user.js User
  modelguard fix src/services/user.js --dry-run`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFix,
}

var fixDryRun bool

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().BoolVarP(&fixDryRun, "dry-run", "n", false, "print the imports that would be inserted without writing")
}

func runFix(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}

	identifier := ""
	if len(args) == 2 {
		identifier = args[1]
	}

	return executeFix(cmd.Context(), root, cfgFile, args[0], identifier, fixDryRun, viper.GetBool("verbose"), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// executeFix fixes one file and prints what was inserted.
func executeFix(ctx context.Context, root, configFile, path, identifier string, dryRun, verbose bool, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(root, configFile)
	if err != nil {
		return err
	}

	c, err := checker.New(cfg, newLogger(stderr, verbose))
	if err != nil {
		return err
	}
	defer c.Close()

	var opts []checker.FixOption
	if dryRun {
		opts = append(opts, checker.WithDryRun())
	}

	outcome, err := c.FixFile(ctx, path, identifier, opts...)
	if err != nil {
		return err
	}

	verb := "Inserted"
	if dryRun {
		verb = "Would insert"
	}
	display := relPath(root, path)
	for _, fix := range outcome.Applied {
		fmt.Fprintf(stdout, "%s %s:%d: %s", verb, display, fix.Line+1, fix.Text)
	}
	if n := len(outcome.Remaining); n > 0 {
		fmt.Fprintf(stdout, "%d finding(s) remain in %s\n", n, display)
	}
	return nil
}

// relPath returns path relative to root when it lies inside it.
func relPath(root, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || rel == ".." || len(rel) > 3 && rel[:3] == ".."+string(filepath.Separator) {
		return path
	}
	return filepath.ToSlash(rel)
}
