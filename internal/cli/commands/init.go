package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keyslip-labs/keyslip/internal/cli/output"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Scaffold a keyslip setup",
		Long: `Create a starter configuration in the target directory.

This creates:
  - keyslip.yaml configuration file
  - wordlist.txt starter word list
  - keymap.conf QWERTY keymap to copy and edit
  - .gitignore for the local data directory

Existing files are left untouched unless --force is given.`,
		Example: `  # Initialize in current directory
  keyslip init

  # Initialize in a new directory
  keyslip init my-project

  # Force overwrite existing files
  keyslip init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			// Create renderer
			cfg := getConfig()
			mode := output.Mode(cfg.OutputFormat)
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func runInit(r *output.Renderer, dir string, force bool) error {
	// Create directory if specified and doesn't exist
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Check if config already exists
	configPath := filepath.Join(dir, "keyslip.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("keyslip.yaml already exists. Use --force to overwrite")
	}

	if err := copyStarter(dir, force); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	// List created files
	files, _ := starterFiles()
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("keyslip initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Grow wordlist.txt (one lowercase word per line)")
	r.Println("  2. Run 'keyslip correct helo' to try a lookup")
	r.Println("  3. Run 'keyslip repl' for an interactive session")
	r.Println("  4. Run 'keyslip doctor' to verify the setup")

	return nil
}
