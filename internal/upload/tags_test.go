package upload

import (
	"errors"
	"reflect"
	"testing"

	"lookbook/internal/ids"
	"lookbook/internal/models"
)

func TestBuildTagsCollectsIdentifiers(t *testing.T) {
	regions := []Region{
		region("Classic Tee", 10, 20, "Acme", "acme ", "Beta"),
		region("Wide Jeans", 50, 50, "Beta"),
		region("classic  tee", 80, 10, "Gamma"),
	}
	g, err := BuildTags(regions, " Jane ", []byte("B"))
	if err != nil {
		t.Fatalf("build tags: %v", err)
	}

	tee, jeans := ids.ItemID("Classic Tee"), ids.ItemID("Wide Jeans")
	acme, beta, gamma := ids.NameID("Acme"), ids.NameID("Beta"), ids.NameID("Gamma")

	if g.ImageID() != ids.ContentID([]byte("B")) || g.ArtistID() != ids.NameID("jane") {
		t.Fatalf("unexpected image/artist ids: %s %s", g.ImageID(), g.ArtistID())
	}
	if got := g.Items(); !reflect.DeepEqual(got, []string{tee, jeans}) {
		t.Fatalf("unexpected items: %v", got)
	}
	if got := g.Brands(); !reflect.DeepEqual(got, []string{acme, beta, gamma}) {
		t.Fatalf("unexpected brands: %v", got)
	}
	if g.BrandName(acme) != "Acme" || g.ArtistName() != "Jane" {
		t.Fatalf("display names not kept: %q %q", g.BrandName(acme), g.ArtistName())
	}

	itemTags := g.ItemTags(tee)
	if got := itemTags.Get(models.TagBrands); !reflect.DeepEqual(got, []string{acme, beta, gamma}) {
		t.Fatalf("item brands should union across regions: %v", got)
	}
	if itemTags.Contains(models.TagItems, tee) {
		t.Fatal("item tags must not list items")
	}

	imageTags := g.ImageTags()
	if got := imageTags.Get(models.TagImages); !reflect.DeepEqual(got, []string{g.ImageID()}) {
		t.Fatalf("image tags should list only itself: %v", got)
	}
	if got := imageTags.Get(models.TagArtists); len(got) != 1 {
		t.Fatalf("expected one artist, got %v", got)
	}

	brandRefs := g.BrandBackrefs()
	if _, ok := brandRefs[models.TagBrands]; ok {
		t.Fatal("brand backrefs must not carry brands")
	}
	artistRefs := g.ArtistBackrefs()
	if _, ok := artistRefs[models.TagArtists]; ok {
		t.Fatal("artist backrefs must not carry artists")
	}
	if !artistRefs.Covers(models.TagSet{models.TagBrands: {acme, beta, gamma}, models.TagItems: {tee, jeans}}) {
		t.Fatalf("artist backrefs incomplete: %v", artistRefs)
	}
}

func TestBuildTagsProjectionsAreCopies(t *testing.T) {
	g, err := BuildTags([]Region{region("Classic Tee", 1, 1, "Acme")}, "Jane", []byte("B"))
	if err != nil {
		t.Fatalf("build tags: %v", err)
	}
	tags := g.ImageTags()
	tags[models.TagItems][0] = "mutated"
	items := g.Items()
	items[0] = "mutated"

	if g.ImageTags().Contains(models.TagItems, "mutated") || g.Items()[0] == "mutated" {
		t.Fatal("graph changed through a returned value")
	}
}

func TestBuildTagsValidation(t *testing.T) {
	tests := []struct {
		name    string
		regions []Region
		artist  string
		image   []byte
		field   string
	}{
		{name: "blank brands", regions: []Region{region("Tee", 1, 1, " ", "")}, artist: "Jane", image: []byte("B"), field: "regions[0].brands"},
		{name: "no brands", regions: []Region{region("Tee", 1, 1)}, artist: "Jane", image: []byte("B"), field: "regions[0].brands"},
		{name: "empty item", regions: []Region{region("Tee", 1, 1, "Acme"), region("  ", 1, 1, "Acme")}, artist: "Jane", image: []byte("B"), field: "regions[1].item.name"},
		{name: "no artist", regions: []Region{region("Tee", 1, 1, "Acme")}, artist: " ", image: []byte("B"), field: "artist"},
		{name: "no image", regions: []Region{region("Tee", 1, 1, "Acme")}, artist: "Jane", field: "image"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildTags(tc.regions, tc.artist, tc.image)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
}
