package extract

import (
	"fmt"
	"strings"
)

type (
	// BlockedError indicates the upstream site refused the request, typically
	// due to rate-limiting or IP-blocking of the server.
	BlockedError struct{ reason string }

	// ConversionError indicates the post-processing step did not produce the
	// expected output despite the extraction reporting success; the most
	// likely cause is a missing or misconfigured ffmpeg binary.
	ConversionError struct{ reason string }

	// ExtractionError is any other failure surfaced by the extraction tool.
	ExtractionError struct{ reason string }
)

func (err *BlockedError) Error() string {
	return fmt.Sprintf("upstream site blocked the request: %s", err.reason)
}

func (err *ConversionError) Error() string {
	return fmt.Sprintf("media conversion failed (is ffmpeg installed and reachable?): %s", err.reason)
}

func (err *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", err.reason)
}

// NewConversionError allows callers which discover a conversion failure
// themselves (e.g. an output file missing after a claimed success) to raise
// it under the same classification the adapter uses.
func NewConversionError(reason string) *ConversionError {
	return &ConversionError{reason: reason}
}

// classifyRunError converts the stringly-typed failure surface of the
// extraction tool in to the typed error taxonomy. This text-sniffing happens
// here, and only here; handlers dispatch on the resulting types.
func classifyRunError(err error) error {
	message := err.Error()
	lowered := strings.ToLower(message)

	switch {
	case strings.Contains(message, "403") || strings.Contains(lowered, "forbidden"):
		return &BlockedError{reason: message}
	case strings.Contains(lowered, "ffmpeg") || strings.Contains(lowered, "ffprobe"):
		return &ConversionError{reason: message}
	default:
		return &ExtractionError{reason: message}
	}
}
