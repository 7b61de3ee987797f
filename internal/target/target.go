// Package target validates page URLs and derives output filenames for them.
package target

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var nonWord = regexp.MustCompile(`[^0-9A-Za-z_]+`)

// ValidURL reports whether raw parses to a URL with both a scheme and a
// host. Malformed input is invalid, not an error.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// OutputName derives a PDF filename from a valid URL as
// {domain}_{base}_{YYYYMMDD_HHMMSS}.pdf. The base is the last non-empty path
// segment with its extension stripped and non-word runs collapsed to single
// underscores, or "index" for an empty path.
func OutputName(raw string, now time.Time) string {
	u, err := url.Parse(raw)
	if err != nil {
		u = &url.URL{}
	}

	base := "index"
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			base = part
		}
	}

	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	base = nonWord.ReplaceAllString(base, "_")

	return fmt.Sprintf("%s_%s_%s.pdf", u.Host, base, now.Format("20060102_150405"))
}
