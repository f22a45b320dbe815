package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"lookbook/internal/api"
	"lookbook/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show store backend, record counts and upload policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}

				_ = writePlain("store_backend: %s\n", resp.StoreBackend)
				_ = writePlain("curator_auth: %t\n", resp.CuratorAuth)
				_ = writePlain("description_max_bytes: %d\n", resp.DescriptionMaxBytes)
				_ = writePlain("allowed_item_media_types: %s\n", strings.Join(resp.AllowedItemMediaTypes, ", "))

				collections := make([]string, 0, len(resp.Counts))
				for collection := range resp.Counts {
					collections = append(collections, collection)
				}
				sort.Strings(collections)
				_ = writePlain("counts:\n")
				for _, collection := range collections {
					_ = writePlain("  %s: %d\n", collection, resp.Counts[collection])
				}
				return nil
			})
		},
	}
}
