package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "METRICSLOG"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "metricslog",
		Short:         "Periodically write aggregated metrics to a log file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCommand(newViper()))
	return cmd
}

// newViper returns a viper instance reading METRICSLOG_* variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return v
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
