package media

import (
	"regexp"
	"strings"
)

// Characters which are illegal in filenames on common filesystems.
var illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

const (
	maxFilenameLength = 200
	fallbackFilename  = "download"
)

// SanitizeTitle normalises an extracted media title in to a filesystem-safe,
// length-bounded filename stem. Illegal characters are removed, leading and
// trailing spaces/dots are trimmed, and the result is truncated to 200
// characters. An input which sanitises to nothing yields "download". This
// function is total and idempotent.
func SanitizeTitle(raw string) string {
	cleaned := illegalFilenameChars.ReplaceAllString(raw, "")
	cleaned = strings.Trim(cleaned, ". ")

	if runes := []rune(cleaned); len(runes) > maxFilenameLength {
		cleaned = strings.Trim(string(runes[:maxFilenameLength]), ". ")
	}

	if cleaned == "" {
		return fallbackFilename
	}

	return cleaned
}
