package models

// TagKind labels one list inside a TagSet.
type TagKind string

const (
	TagImages  TagKind = "images"
	TagItems   TagKind = "items"
	TagBrands  TagKind = "brands"
	TagArtists TagKind = "artists"
)

// TagKinds lists every kind in canonical order.
var TagKinds = []TagKind{TagImages, TagItems, TagBrands, TagArtists}

// TagSet records which other entities reference, or are referenced by, the
// owning record. Each list is an ordered set. Methods never mutate the
// receiver.
type TagSet map[TagKind][]string

// Get returns a copy of the ids recorded for kind.
func (t TagSet) Get(kind TagKind) []string {
	ids := t[kind]
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Contains reports whether id is recorded under kind.
func (t TagSet) Contains(kind TagKind, id string) bool {
	for _, existing := range t[kind] {
		if existing == id {
			return true
		}
	}
	return false
}

// With returns a copy of t with ids appended under kind, skipping duplicates.
func (t TagSet) With(kind TagKind, ids ...string) TagSet {
	out := t.Clone()
	out[kind] = AppendUnique(out[kind], ids...)
	if len(out[kind]) == 0 {
		delete(out, kind)
	}
	return out
}

// Union returns a TagSet holding every id of t followed by the new ids of other.
func (t TagSet) Union(other TagSet) TagSet {
	out := t.Clone()
	for _, kind := range TagKinds {
		if ids := other[kind]; len(ids) > 0 {
			out[kind] = AppendUnique(out[kind], ids...)
		}
	}
	return out
}

// Only returns a copy restricted to the given kinds.
func (t TagSet) Only(kinds ...TagKind) TagSet {
	out := TagSet{}
	for _, kind := range kinds {
		if ids := t.Get(kind); len(ids) > 0 {
			out[kind] = ids
		}
	}
	return out
}

// Covers reports whether every id of other is present in t.
func (t TagSet) Covers(other TagSet) bool {
	for kind, ids := range other {
		for _, id := range ids {
			if !t.Contains(kind, id) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy. A nil receiver yields an empty set.
func (t TagSet) Clone() TagSet {
	out := make(TagSet, len(t))
	for kind, ids := range t {
		if len(ids) == 0 {
			continue
		}
		cp := make([]string, len(ids))
		copy(cp, ids)
		out[kind] = cp
	}
	return out
}

// AppendUnique appends values missing from dst, preserving order.
// dst itself is never modified in place.
func AppendUnique(dst []string, values ...string) []string {
	out := make([]string, 0, len(dst)+len(values))
	seen := make(map[string]struct{}, len(dst)+len(values))
	for _, v := range dst {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
