package backend

import (
	"errors"
	"strings"
)

// ErrNotInitialized is returned when a completion is requested before
// the session's Init has completed.
var ErrNotInitialized = errors.New("backend not initialized")

// MalformedOutputError reports engine output that failed to decode as a
// structured response. RawText carries whatever free text the engine
// produced before failing, so callers can salvage the turn instead of
// discarding it.
type MalformedOutputError struct {
	RawText string
	Message string
}

func (e *MalformedOutputError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "malformed engine output"
}

// rawOutputMarker precedes the free text some engines embed in their
// error message when constrained decoding fails.
const rawOutputMarker = "Got outputMessage:"

// RawOutputFromError scans an engine error message for embedded free
// text. The text runs from the marker to the next newline, or to the
// end of the message. This is the compatibility shim for engines that
// report malformed output only through error strings; engines should
// prefer returning a MalformedOutputError directly.
func RawOutputFromError(message string) (string, bool) {
	i := strings.Index(message, rawOutputMarker)
	if i < 0 {
		return "", false
	}
	text := message[i+len(rawOutputMarker):]
	if j := strings.IndexByte(text, '\n'); j >= 0 {
		text = text[:j]
	}
	return strings.TrimSpace(text), true
}
