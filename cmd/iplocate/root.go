package main

import (
	"fmt"

	"github.com/TomasB/iplocate/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const name = "iplocate"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// newRootCommand wires the sub-commands to a shared viper instance so flags,
// environment and config file resolve through the same keys.
func newRootCommand() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           name,
		Short:         "Resolve IPv4 addresses to country and city",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.PersistentFlags().StringP("config", "c", "", "config file (yaml or toml)")
	root.PersistentFlags().String("dataset", "", "dataset path (overrides DATASET_PATH)")
	root.PersistentFlags().String("format", "", "dataset format: csv or mmdb (overrides DATASET_FORMAT)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	bindFlag(v, root, "dataset_path", "dataset")
	bindFlag(v, root, "dataset_format", "format")
	bindFlag(v, root, "log_level", "log-level")

	root.AddCommand(
		serveCommand(v),
		lookupCommand(v),
		versionCommand(),
	)
	return root
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func loadConfig(v *viper.Viper, cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(v, file)
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
		DisableFlagsInUseLine: true,
	}
}
