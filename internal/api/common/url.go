package common

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
)

// maxPathParamLength bounds listener names and other identifiers taken from paths
const maxPathParamLength = 128

// PathParam returns the unescaped chi URL parameter key. Identifiers must be
// non-empty printable text without whitespace.
func PathParam(r *http.Request, key string) (string, error) {
	value, err := url.PathUnescape(chi.URLParam(r, key))
	switch {
	case err != nil:
		return "", fmt.Errorf("invalid URL encoding in %s", key)
	case value == "":
		return "", fmt.Errorf("%s cannot be empty", key)
	case len(value) > maxPathParamLength:
		return "", fmt.Errorf("%s cannot be longer than %d bytes", key, maxPathParamLength)
	case strings.IndexFunc(value, func(r rune) bool { return unicode.IsSpace(r) || !unicode.IsPrint(r) }) >= 0:
		return "", fmt.Errorf("%s cannot contain whitespace or control characters", key)
	}
	return value, nil
}
