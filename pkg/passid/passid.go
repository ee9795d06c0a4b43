// Package passid issues participant IDs and derives the QR scan URL from them.
//
// An ID is a fixed prefix followed by the first n uppercase hex digits of a
// random 128-bit UUID. The scan URL is a pure function of the base URL and
// the ID, so an image rendered from it never needs to be regenerated.
package passid

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPrefix = "OSW_RG"
	DefaultLength = 10

	// ImageExt is the extension of a rendered pass image.
	ImageExt = ".png"

	// maxLength is the hex width of a 128-bit value.
	maxLength = 32
)

// Generator issues IDs. The zero value is not usable; call NewGenerator.
type Generator struct {
	prefix string
	length int
	random func() uuid.UUID
}

// NewGenerator returns a Generator for prefix; length is clamped to [1, 32].
func NewGenerator(prefix string, length int) *Generator {
	if length < 1 {
		length = 1
	}
	if length > maxLength {
		length = maxLength
	}
	return &Generator{prefix: prefix, length: length, random: uuid.New}
}

// NewID returns a fresh participant ID.
func (g *Generator) NewID() string {
	u := g.random()
	hex := strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
	return g.prefix + hex[:g.length]
}

// Prefix returns the literal prefix of every issued ID.
func (g *Generator) Prefix() string { return g.prefix }

// Pattern matches exactly the IDs this generator can issue.
func (g *Generator) Pattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s[0-9A-F]{%d}$`, regexp.QuoteMeta(g.prefix), g.length))
}

// ScanURL returns the QR payload for id: baseURL with an "id" query parameter.
func ScanURL(baseURL, id string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "id=" + url.QueryEscape(id)
}

// ImagePath returns where the pass image of id lives inside dir: <dir>/<id>.png.
func ImagePath(dir, id string) string {
	return filepath.Join(dir, id+ImageExt)
}
