package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/dshills/prism-ci/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage prism-ci configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			fail(cmd, err)
			return nil
		}

		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
			return nil
		}

		if err := config.Save(config.Default()); err != nil {
			fail(cmd, fmt.Errorf("writing config: %w", err))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Config file created at %s\n", path)
		return nil
	},
}

// configSetCmd takes its arguments verbatim: values such as "-p" are
// generator flags, not flags of this command.
var configSetCmd = &cobra.Command{
	Use:                "set <key> <value>",
	Short:              "Set a configuration value",
	DisableFlagParsing: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if isHelpArg(args) {
			return nil
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if isHelpArg(args) {
			return cmd.Help()
		}
		cfg, err := config.LoadSaved("")
		if err != nil {
			// An unreadable file is replaced, starting from defaults.
			cfg = config.Default()
		}

		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			fail(cmd, err)
			return nil
		}

		if err := config.Save(cfg); err != nil {
			fail(cmd, fmt.Errorf("saving config: %w", err))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func isHelpArg(args []string) bool {
	return len(args) == 1 && (args[0] == "-h" || args[0] == "--help")
}

var configShowFile string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configShowFile, nil)
		if err != nil {
			fail(cmd, err)
			return nil
		}

		if err := toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg); err != nil {
			fail(cmd, err)
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringVar(&configShowFile, "config", "", "Config file (default: user config file)")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
