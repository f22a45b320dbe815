package main

import (
	"errors"

	"github.com/spf13/cobra"

	"lookbook/internal/api"
	"lookbook/internal/config"
)

func newUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		title  string
		artist string
	)

	cmd := &cobra.Command{
		Use:   "upload <manifest.yaml>",
		Short: "Upload an image and its tagged items from a YAML manifest",
		Args:  manifestArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				req.Title = title
			}
			if cmd.Flags().Changed("artist") {
				req.Artist = artist
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Upload(cmd.Context(), req)
				if err != nil {
					var apiErr *api.APIError
					if *jsonOutput && errors.As(err, &apiErr) && apiErr.Upload != nil {
						_ = writeJSON(apiErr.Upload)
					}
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeUploadResult(resp)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "override the manifest title")
	cmd.Flags().StringVar(&artist, "artist", "", "override the manifest artist")
	return cmd
}
