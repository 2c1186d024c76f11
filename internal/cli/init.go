package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/modelguard/internal/config"
)

// initProjectCmd represents the init command
var initProjectCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .modelguard/config.yml",
	Long: `Create .modelguard/config.yml in the project root populated with the
default settings, ready to edit.`,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initProjectCmd)

	initProjectCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveProjectRoot()
	if err != nil {
		return err
	}
	return executeInit(root, initForce, cmd.OutOrStdout())
}

const configHeader = `# modelguard configuration
# Environment variables override these values: MODELGUARD_<SECTION>_<KEY>,
# e.g. MODELGUARD_CHECK_MODE=open or MODELGUARD_HOST_DEBOUNCE_MS=250.
`

// executeInit writes the default config file.
func executeInit(root string, force bool, out io.Writer) error {
	dir := filepath.Join(root, config.ConfigDirName)
	path := filepath.Join(dir, "config.yml")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}
