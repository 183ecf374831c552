package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configCmd prints the effective configuration.
func configCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return err
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
