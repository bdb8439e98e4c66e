package codec

import (
	"fmt"
	"strings"

	"github.com/rcliao/memory-stitch/internal/model"
)

// Codec converts identifiers of one fixed length to and from grids.
type Codec struct {
	length int
	size   int
}

// NewCodec returns a codec for identifiers of the given length.
func NewCodec(length int) (*Codec, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: length %d", ErrIdentifierLength, length)
	}
	return &Codec{length: length, size: GridSize(length)}, nil
}

// Length returns the identifier length L.
func (c *Codec) Length() int { return c.length }

// Size returns the grid size N.
func (c *Codec) Size() int { return c.size }

// Encode lays the 7-bit code points of id into an N×N grid, row-major,
// skipping the corners. Cells past the last bit stay false.
func (c *Codec) Encode(id string) (model.Grid, error) {
	bits, err := c.bits(id)
	if err != nil {
		return nil, err
	}

	g := model.NewGrid(c.size)
	i := 0
	for r := 0; r < c.size; r++ {
		for col := 0; col < c.size; col++ {
			if model.IsCorner(r, col, c.size) {
				continue
			}
			if i < len(bits) {
				g[r][col] = bits[i] == '1'
			}
			i++
		}
	}
	return g, nil
}

func (c *Codec) bits(id string) (string, error) {
	if len(id) != c.length {
		return "", fmt.Errorf("%w: %q has %d characters, want %d", ErrIdentifierLength, id, len(id), c.length)
	}
	var b strings.Builder
	b.Grow(BitsPerChar * c.length)
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(Alphabet, id[i]) < 0 {
			return "", fmt.Errorf("%w: %q at position %d", ErrInvalidIdentifier, id[i], i)
		}
		fmt.Fprintf(&b, "%07b", id[i])
	}
	return b.String(), nil
}

// Bits reads g row-major, skipping its corners, one '1' or '0' per cell.
// It is the structural inverse of Encode over data cells.
func Bits(g model.Grid) string {
	n := len(g)
	var b strings.Builder
	b.Grow(n * n)
	for r, row := range g {
		for col, v := range row {
			if model.IsCorner(r, col, n) {
				continue
			}
			if v {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	}
	return b.String()
}
