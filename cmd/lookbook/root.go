package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lookbook/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "lookbook",
		Short:         "Lookbook curates fashion photographs and the items, brands and artists tagged on them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := setupLogging(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newUploadCmd(cfg, &jsonOutput),
		newImageCmd(cfg, &jsonOutput),
		newItemCmd(cfg, &jsonOutput),
		newBrandCmd(cfg, &jsonOutput),
		newArtistCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newAdminCmd(&jsonOutput),
	)

	return cmd
}
