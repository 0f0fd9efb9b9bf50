package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitchain/packages/core/config"
)

type initOptions struct {
	dir     string
	format  string
	baseURI string
	force   bool
}

func newInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a hitchain config file holding the default settings.

The file is picked up by "hitchain check" and by config.LoadConfig when it
sits in the working directory.

Examples:
  hitchain init
  hitchain init --format json --base-uri http://localhost:3000
  hitchain init --force`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", ".", "Directory to write the config file to")
	f.StringVar(&opts.format, "format", "yaml", "File format: yaml, json")
	f.StringVar(&opts.baseURI, "base-uri", "", "Base URI to store in the file")
	f.BoolVarP(&opts.force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, opts *initOptions) error {
	var name string
	switch opts.format {
	case "yaml", "yml":
		name = ".hitchain.yaml"
	case "json":
		name = ".hitchain.json"
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown format %q (use yaml or json)", opts.format))
	}
	path := filepath.Join(opts.dir, name)

	if !opts.force {
		if _, err := os.Stat(path); err == nil {
			return withExitCode(ExitConfigError, fmt.Errorf("file already exists: %s (use --force to overwrite)", path))
		}
	}

	cfg := config.DefaultConfig()
	if opts.baseURI != "" {
		cfg.BaseURI = opts.baseURI
	}
	if err := cfg.SaveConfig(path); err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("failed to create config file: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	return nil
}
