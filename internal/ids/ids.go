package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentID returns the lower-case hex SHA-256 digest of b.
func ContentID(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// NameID returns the content id of the normalized name.
func NameID(name string) string {
	return ContentID([]byte(Normalize(name)))
}

// ItemID derives an item id from its display name, so re-tagging the same
// item on another image lands on the same record.
func ItemID(name string) string {
	return NameID(name)
}

// Normalize trims name, collapses whitespace runs to one space and lower-cases it.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// StorageName turns a display name into a blob path segment:
// "Classic Tee" becomes "classic_tee".
func StorageName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// Valid reports whether id has the shape of a generated identifier.
func Valid(id string) bool {
	if len(id) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
