package main

import (
	"strings"

	"github.com/spf13/cobra"

	"lookbook/internal/api"
	"lookbook/internal/config"
)

func newBrandCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Manage brands",
	}
	cmd.AddCommand(newBrandAddCmd(cfg, jsonOutput))
	cmd.AddCommand(newBrandListCmd(cfg, jsonOutput))
	cmd.AddCommand(newBrandShowCmd(cfg, jsonOutput))
	return cmd
}

func newBrandAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a brand unless one with the same name exists",
		Args:  brandNameArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.CreateBrand(cmd.Context(), api.BrandCreateRequest{Name: name})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if !resp.Created {
					return writePlain("brand %s already exists (%s)\n", resp.Brand.Name, resp.Brand.ID)
				}
				return writePlain("created brand %s (%s)\n", resp.Brand.Name, resp.Brand.ID)
			})
		},
	}
}

func newBrandListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List brands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				brands, err := client.ListBrands(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(brands)
				}
				for _, brand := range brands {
					if err := writePlain("%s  %s\n", brand.ID, brand.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newBrandShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-or-name>",
		Short: "Show one brand and the records tagged with it",
		Args:  recordRefArg("brand"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				brand, err := client.GetBrand(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(brand)
				}
				return writeNamedRecord(brand.ID, brand.Name, brand.Tags)
			})
		},
	}
}
