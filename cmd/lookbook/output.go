package main

import (
	"fmt"
	"os"
	"strings"

	"lookbook/internal/api"
	"lookbook/internal/format"
	"lookbook/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{Indent: "  "}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeUploadResult(resp api.UploadResponse) error {
	lines := []string{
		fmt.Sprintf("upload_id: %s", resp.UploadID),
		fmt.Sprintf("state: %s", resp.State),
		fmt.Sprintf("image: %s", resp.ImageID),
		fmt.Sprintf("artist: %s", resp.ArtistID),
	}
	if len(resp.ItemIDs) > 0 {
		lines = append(lines, fmt.Sprintf("items: %s", strings.Join(resp.ItemIDs, ", ")))
	}
	if len(resp.BrandIDs) > 0 {
		lines = append(lines, fmt.Sprintf("brands: %s", strings.Join(resp.BrandIDs, ", ")))
	}
	failed := 0
	for _, target := range resp.Propagation.Targets {
		if target.Error != "" {
			failed++
			lines = append(lines, fmt.Sprintf("  failed %s/%s: %s", target.Collection, target.ID, target.Error))
		}
	}
	lines = append(lines, fmt.Sprintf("propagated: %d/%d", len(resp.Propagation.Targets)-failed, len(resp.Propagation.Targets)))
	return writeLines(lines)
}

func writeImageDetail(detail api.ImageDetailResponse) error {
	lines := []string{
		fmt.Sprintf("id: %s", detail.Image.ID),
		fmt.Sprintf("title: %s", detail.Image.Title),
	}
	if detail.ImageURL != "" {
		lines = append(lines, fmt.Sprintf("url: %s", detail.ImageURL))
	}
	if detail.Image.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", detail.Image.Description))
	}
	if len(detail.Artists) > 0 {
		lines = append(lines, fmt.Sprintf("artists: %s", strings.Join(detail.Artists, ", ")))
	}
	if len(detail.Brands) > 0 {
		lines = append(lines, fmt.Sprintf("brands: %s", strings.Join(detail.Brands, ", ")))
	}
	if len(detail.Items) > 0 {
		lines = append(lines, "items:")
		for _, hover := range detail.Items {
			lines = append(lines, fmt.Sprintf("  - %s (%s %s) at %.1f%%,%.1f%%",
				hover.Item.Name, hover.Item.Price.Amount, hover.Item.Price.Currency,
				hover.Position.Top, hover.Position.Left))
		}
	}
	if len(detail.ArtistImages) > 0 {
		lines = append(lines, "more by artist:")
		for _, img := range detail.ArtistImages {
			lines = append(lines, fmt.Sprintf("  - %s", img.ID))
		}
	}
	return writeLines(lines)
}

func writeItem(item models.Item) error {
	lines := []string{
		fmt.Sprintf("id: %s", item.ID),
		fmt.Sprintf("name: %s", item.Name),
		fmt.Sprintf("price: %s %s", item.Price.Amount, item.Price.Currency),
	}
	if item.Category != "" {
		lines = append(lines, fmt.Sprintf("category: %s", item.Category))
	}
	if item.AffiliateURL != "" {
		lines = append(lines, fmt.Sprintf("affiliate_url: %s", item.AffiliateURL))
	}
	if item.ImageURL != "" {
		lines = append(lines, fmt.Sprintf("image_url: %s", item.ImageURL))
	}
	lines = append(lines, tagLines(item.Tags)...)
	return writeLines(lines)
}

func writeNamedRecord(id, name string, tags models.TagSet) error {
	lines := []string{
		fmt.Sprintf("id: %s", id),
		fmt.Sprintf("name: %s", name),
	}
	lines = append(lines, tagLines(tags)...)
	return writeLines(lines)
}

func tagLines(tags models.TagSet) []string {
	var lines []string
	for _, kind := range models.TagKinds {
		if ids := tags.Get(kind); len(ids) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", kind, strings.Join(ids, ", ")))
		}
	}
	return lines
}
