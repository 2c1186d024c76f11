package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/modelguard/internal/config"
)

// ErrFindingsFound is returned by check when findings remain. Execute turns
// it into exit status 1 without printing it.
var ErrFindingsFound = errors.New("missing model imports found")

var (
	cfgFile    string
	verbose    bool
	projectDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modelguard",
	Short: "Modelguard - flag ORM model usage without a matching import",
	Long: `Modelguard scans JavaScript and TypeScript sources for capitalized model
identifiers used with ORM-style methods (User.findOne, Post.create, ...)
and reports every usage whose identifier was never imported or required
in the same file. It can insert the missing import for you.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrFindingsFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <project>/.modelguard/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", "", "project root (default is the current directory)")

	// Bind flags to viper
	viper.SetEnvPrefix("MODELGUARD")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindEnv("verbose")
}

// newLogger builds the stderr logger. Stdout is reserved for reports.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// resolveProjectRoot returns the --project directory or the working directory.
func resolveProjectRoot() (string, error) {
	if projectDir != "" {
		return projectDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return wd, nil
}

// loadConfig loads the explicit --config file when given, otherwise the
// project's .modelguard/config.yml with defaults and env overrides.
func loadConfig(root, file string) (*config.Config, error) {
	var loader config.Loader
	if file != "" {
		loader = config.NewFileLoader(file)
	} else {
		loader = config.NewLoader(root)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
