package orders

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces name to a base name made of ASCII letters, digits,
// dots, dashes and underscores. A stem with nothing usable left becomes
// "order". It returns "" for an empty name.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return ""
	}
	ext := filepath.Ext(name)
	stem := strings.Trim(clean(strings.TrimSuffix(name, ext)), "._-")
	ext = clean(ext)
	if stem == "" {
		stem = "order"
	}
	return stem + ext
}

func clean(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
