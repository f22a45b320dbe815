package store

import (
	"encoding/json"
	"testing"

	"lookbook/internal/models"
)

func TestApplyPatchEmptyDocument(t *testing.T) {
	body, err := ApplyPatch(nil, Patch{
		Tags:        models.TagSet{models.TagItems: {"item-1"}},
		SetIfAbsent: map[string]any{"name": "Acme"},
	})
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}

	var brand models.Brand
	if err := json.Unmarshal(body, &brand); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if brand.Name != "Acme" || !brand.Tags.Contains(models.TagItems, "item-1") {
		t.Fatalf("unexpected brand: %#v", brand)
	}
}

func TestApplyPatchKeepsUnrelatedFields(t *testing.T) {
	existing := []byte(`{"id":"b1","name":"Acme","founded":1970,"tags":{"images":["i1"],"brands":["weird",7],"collabs":["x1"]}}`)
	body, err := ApplyPatch(existing, Patch{Tags: models.TagSet{
		models.TagImages: {"i2", "i1"},
		models.TagBrands: {"b2"},
	}})
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}

	var doc struct {
		Founded int                        `json:"founded"`
		Tags    map[string]json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Founded != 1970 {
		t.Fatalf("unrelated field lost: %s", body)
	}

	tests := []struct {
		name string
		kind string
		want string
	}{
		{name: "appends in order", kind: "images", want: `["i1","i2"]`},
		{name: "keeps non-string entries", kind: "brands", want: `["weird",7,"b2"]`},
		{name: "keeps unknown kinds", kind: "collabs", want: `["x1"]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := string(doc.Tags[tc.kind]); got != tc.want {
				t.Fatalf("tags.%s: expected %s, got %s", tc.kind, tc.want, got)
			}
		})
	}
}

func TestApplyPatchTreatsNullTagsAsEmpty(t *testing.T) {
	body, err := ApplyPatch([]byte(`{"name":"Acme","tags":null}`), Patch{Tags: models.TagSet{models.TagItems: {"item-1"}}})
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}
	var brand models.Brand
	if err := json.Unmarshal(body, &brand); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !brand.Tags.Contains(models.TagItems, "item-1") {
		t.Fatalf("expected merged tags, got %s", body)
	}
}

func TestApplyPatchRejectsMalformedTags(t *testing.T) {
	patch := Patch{Tags: models.TagSet{models.TagImages: {"i1"}}}
	for _, raw := range []string{`{"tags":"oops"}`, `{"tags":{"images":"i0"}}`} {
		if _, err := ApplyPatch([]byte(raw), patch); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestApplyPatchRejectsInvalidDocuments(t *testing.T) {
	for _, raw := range []string{`{"broken"`, `["array"]`} {
		if _, err := ApplyPatch([]byte(raw), Patch{}); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}
