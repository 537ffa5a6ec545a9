package media

import "regexp"

// The recognised URL shapes for shared videos. Matching is anchored at the
// start of the string; the scheme and 'www.' prefix are optional in all forms.
var recognisedURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^(https?://)?(www\.)?youtu\.be/[\w-]+`),
}

// ValidateURL reports whether the provided string matches one of the
// recognised shared-video URL shapes (canonical 'watch?v=ID' form, or the
// short-link form). It performs no network access and never fails; callers
// are expected to reject the request with a client error when this
// returns false.
func ValidateURL(url string) bool {
	if url == "" {
		return false
	}

	for _, pattern := range recognisedURLPatterns {
		if pattern.MatchString(url) {
			return true
		}
	}

	return false
}
