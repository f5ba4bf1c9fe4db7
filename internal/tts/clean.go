package tts

import "strings"

// CleanText prepares text for synthesis: "&" is read as the conjunction
// " и " and runs of whitespace collapse to one space.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "&", " и ")
	return strings.Join(strings.Fields(text), " ")
}

// WithExt replaces the extension of path with ext. Paths without an
// extension get ext appended.
func WithExt(path, ext string) string {
	slash := strings.LastIndexAny(path, `/\`)
	if dot := strings.LastIndex(path, "."); dot > slash {
		path = path[:dot]
	}
	return path + ext
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
