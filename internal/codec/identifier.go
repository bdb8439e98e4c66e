package codec

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rcliao/memory-stitch/internal/model"
)

// ImagePrefixLen is how many leading bytes of each image feed the hash.
const ImagePrefixLen = 500

// Generator derives identifiers from memory content.
type Generator struct {
	length int
	now    func() time.Time
}

// NewGenerator returns a generator producing identifiers of the given
// length. Non-positive lengths fall back to DefaultLength.
func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{length: length, now: time.Now}
}

// WithClock returns a copy of g that reads the fallback seed from now.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	cp := *g
	cp.now = now
	return &cp
}

// Length returns the identifier length.
func (g *Generator) Length() int { return g.length }

// Generate hashes the title, body and image prefixes of m into an
// identifier. An empty memory hashes the current time instead, so the
// result is only non-deterministic for empty input.
func (g *Generator) Generate(m model.MemoryContent) string {
	units := contentUnits(m)
	if len(units) == 0 {
		seed := strconv.FormatInt(g.now().UnixMilli(), 10)
		units = utf16.Encode([]rune(seed))
	}
	return Fit(strings.ToUpper(strconv.FormatInt(checksum(units), 36)), g.length)
}

// contentUnits concatenates title, body and image prefixes as 16-bit code
// units. Image bytes contribute one unit each.
func contentUnits(m model.MemoryContent) []uint16 {
	var units []uint16
	if m.Title != "" {
		units = append(units, utf16.Encode([]rune(m.Title))...)
	}
	if m.Body != "" {
		units = append(units, utf16.Encode([]rune(m.Body))...)
	}
	for _, img := range m.Images {
		if len(img) > ImagePrefixLen {
			img = img[:ImagePrefixLen]
		}
		for _, b := range img {
			units = append(units, uint16(b))
		}
	}
	return units
}

// checksum is the 31-multiplier rolling hash in wrapped int32 arithmetic,
// returned as its absolute value.
func checksum(units []uint16) int64 {
	var h int32
	for _, u := range units {
		h = h*31 + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Fit truncates s to length or right-pads it with the alphabet's zero
// symbol.
func Fit(s string, length int) string {
	if len(s) >= length {
		return s[:length]
	}
	return s + strings.Repeat(Alphabet[:1], length-len(s))
}
