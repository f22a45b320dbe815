package main

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lookbook/internal/api"
	"lookbook/internal/models"
)

// uploadManifest describes one upload on disk. File paths are relative to
// the manifest's directory.
type uploadManifest struct {
	Image       string           `yaml:"image"`
	FileName    string           `yaml:"file_name"`
	Title       string           `yaml:"title"`
	Artist      string           `yaml:"artist"`
	Description string           `yaml:"description"`
	Regions     []manifestRegion `yaml:"regions"`
}

type manifestRegion struct {
	Position  models.Position `yaml:"pos"`
	Item      api.UploadItem  `yaml:"item"`
	Brands    []string        `yaml:"brands"`
	Image     string          `yaml:"image"`
	MediaType string          `yaml:"media_type"`
}

func loadManifest(path string) (api.UploadRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return api.UploadRequest{}, err
	}

	var manifest uploadManifest
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&manifest); err != nil {
		return api.UploadRequest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if strings.TrimSpace(manifest.Image) == "" {
		return api.UploadRequest{}, fmt.Errorf("manifest %s: image is required", path)
	}
	image, err := readManifestFile(dir, manifest.Image, "")
	if err != nil {
		return api.UploadRequest{}, fmt.Errorf("manifest %s: image: %w", path, err)
	}

	req := api.UploadRequest{
		Image:       image,
		FileName:    firstNonEmpty(manifest.FileName, filepath.Base(manifest.Image)),
		Title:       manifest.Title,
		Artist:      manifest.Artist,
		Description: manifest.Description,
	}
	for i, region := range manifest.Regions {
		in := api.UploadRegionInput{
			Position: region.Position,
			Item:     region.Item,
			Brands:   region.Brands,
		}
		if strings.TrimSpace(region.Image) != "" {
			in.Image, err = readManifestFile(dir, region.Image, region.MediaType)
			if err != nil {
				return api.UploadRequest{}, fmt.Errorf("manifest %s: regions[%d].image: %w", path, i, err)
			}
		}
		req.Regions = append(req.Regions, in)
	}
	return req, nil
}

func readManifestFile(dir, name, mediaType string) (api.UploadFile, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.UploadFile{}, err
	}
	if strings.TrimSpace(mediaType) == "" {
		mediaType = detectMediaType(path, data)
	}
	return api.UploadFile{Name: filepath.Base(path), MediaType: mediaType, Data: data}, nil
}

// detectMediaType prefers a specific type from the file extension and
// falls back to sniffing.
func detectMediaType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if parsed, _, err := mime.ParseMediaType(byExt); err == nil && parsed != "application/octet-stream" {
			return parsed
		}
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
