package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	RegisterCommand(func(o *options) *cobra.Command {
		return &cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration",
			Long: `Print the configuration mutor would run with, after reading the config
file and applying flag overrides.`,
			Args: cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				cfg, err := o.loadConfig()
				if err != nil {
					return err
				}
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = c.OutOrStdout().Write(data)
				return err
			},
		}
	})
}
