package main

import (
	"github.com/spf13/cobra"

	"lookbook/internal/api"
	"lookbook/internal/config"
)

func newImageCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Inspect curated images",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one image with its tagged items",
		Args:  imageIDArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				detail, err := client.GetImage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(detail)
				}
				return writeImageDetail(detail)
			})
		},
	})
	return cmd
}

func newItemCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Inspect tagged items",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show one item",
		Args:  recordRefArg("item"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				item, err := client.GetItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(item)
				}
				return writeItem(item)
			})
		},
	})
	return cmd
}

func newArtistCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artist",
		Short: "Inspect artists",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show one artist and the records tagged with them",
		Args:  recordRefArg("artist"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				artist, err := client.GetArtist(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(artist)
				}
				return writeNamedRecord(artist.ID, artist.Name, artist.Tags)
			})
		},
	})
	return cmd
}
