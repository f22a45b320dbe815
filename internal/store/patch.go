package store

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"lookbook/internal/models"
)

// ApplyPatch merges patch into the raw JSON document existing and returns
// the new body. An empty existing document is treated as {}.
// Every backend calls this inside its own write transaction.
func ApplyPatch(existing []byte, patch Patch) ([]byte, error) {
	if len(existing) == 0 {
		existing = []byte("{}")
	}
	if !gjson.ValidBytes(existing) {
		return nil, fmt.Errorf("stored document is not valid json")
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(existing, &doc); err != nil {
		return nil, fmt.Errorf("stored document is not an object: %w", err)
	}

	for field, value := range patch.SetIfAbsent {
		if gjson.GetBytes(existing, field).Exists() {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", field, err)
		}
		doc[field] = raw
	}

	if len(patch.Tags) > 0 || !gjson.GetBytes(existing, "tags").Exists() {
		raw, err := mergeTags(existing, patch.Tags)
		if err != nil {
			return nil, err
		}
		doc["tags"] = raw
	}

	return json.Marshal(doc)
}

// mergeTags appends the new ids of add to the stored "tags" object. Entries
// it does not own (unknown kinds, non-string list members) are carried
// through untouched.
func mergeTags(existing []byte, add models.TagSet) (json.RawMessage, error) {
	tags := map[string]json.RawMessage{}
	if stored := gjson.GetBytes(existing, "tags"); stored.Exists() && stored.Type != gjson.Null {
		if !stored.IsObject() {
			return nil, fmt.Errorf("stored tags is not an object")
		}
		if err := json.Unmarshal([]byte(stored.Raw), &tags); err != nil {
			return nil, fmt.Errorf("decode stored tags: %w", err)
		}
	}

	for _, kind := range models.TagKinds {
		ids := add[kind]
		if len(ids) == 0 {
			continue
		}
		current := gjson.GetBytes(existing, "tags."+string(kind))
		if current.Exists() && current.Type != gjson.Null && !current.IsArray() {
			return nil, fmt.Errorf("stored tags.%s is not a list", kind)
		}

		entries := []json.RawMessage{}
		seen := map[string]struct{}{}
		for _, v := range current.Array() {
			entries = append(entries, json.RawMessage(v.Raw))
			if v.Type == gjson.String {
				seen[v.Str] = struct{}{}
			}
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			raw, err := json.Marshal(id)
			if err != nil {
				return nil, err
			}
			entries = append(entries, raw)
		}

		raw, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("encode tags.%s: %w", kind, err)
		}
		tags[string(kind)] = raw
	}

	return json.Marshal(tags)
}
