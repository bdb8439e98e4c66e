package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/memory-stitch/internal/model"
)

// Decoded is the result of reading a grid back into an identifier.
type Decoded struct {
	Identifier string `json:"identifier"`
	Complete   bool   `json:"complete"`
}

// Wildcards returns the number of unresolved positions.
func (d Decoded) Wildcards() int {
	return strings.Count(d.Identifier, string(Wildcard))
}

// OpticalDecoder reads grids from photo analysis or manual entry. Cells
// that were misread or left blank degrade to wildcards instead of errors.
type OpticalDecoder struct {
	codec *Codec
}

// NewOpticalDecoder returns a decoder for c's identifier length.
func NewOpticalDecoder(c *Codec) *OpticalDecoder {
	return &OpticalDecoder{codec: c}
}

// Decode converts each 7-bit chunk of g to a character. Short chunks,
// all-zero chunks and characters outside the alphabet become Wildcard.
// The only error is a grid that is not N×N.
func (d *OpticalDecoder) Decode(g model.Grid) (Decoded, error) {
	n := d.codec.size
	if len(g) != n || !g.IsSquare() {
		return Decoded{}, fmt.Errorf("%w: got %d rows, want %d×%d", ErrGridSize, len(g), n, n)
	}

	bits := Bits(g)
	out := make([]byte, d.codec.length)
	complete := true
	for i := range out {
		ch, ok := decodeChunk(bits, i)
		if !ok {
			ch = Wildcard
			complete = false
		}
		out[i] = ch
	}
	return Decoded{Identifier: string(out), Complete: complete}, nil
}

func decodeChunk(bits string, i int) (byte, bool) {
	lo, hi := i*BitsPerChar, (i+1)*BitsPerChar
	if hi > len(bits) {
		return 0, false
	}
	v, err := strconv.ParseUint(bits[lo:hi], 2, 8)
	if err != nil || v == 0 {
		return 0, false
	}
	ch := byte(v)
	if !InAlphabet(ch) {
		return 0, false
	}
	return ch, true
}
