// Package codec turns memory content into fixed-length identifiers and
// identifiers into boolean grids with four reserved corner cells, and reads
// grids back into identifiers.
//
// Every identifier character is an ASCII code point, so each one occupies
// exactly seven grid cells. Bits are laid out row-major, skipping the
// corners, which never carry data.
package codec

import (
	"errors"
	"math"
	"strings"
)

const (
	// Alphabet lists the symbols an identifier may contain.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Wildcard marks an identifier position that could not be read.
	Wildcard = '*'

	// BitsPerChar is the width of one encoded character.
	BitsPerChar = 7

	// DefaultLength is the default identifier length.
	DefaultLength = 6

	// DefaultCellSize is the default render unit for one grid cell.
	DefaultCellSize = 10

	reservedCells = 4
)

var (
	// ErrIdentifierLength is returned when an identifier does not have the
	// codec's length.
	ErrIdentifierLength = errors.New("identifier has wrong length")
	// ErrInvalidIdentifier is returned when an identifier contains a
	// character outside Alphabet.
	ErrInvalidIdentifier = errors.New("identifier contains invalid character")
	// ErrGridSize is returned when a grid is not N×N for the codec's N.
	ErrGridSize = errors.New("grid has wrong dimensions")
)

// GridSize returns N = ceil(sqrt(4 + 7*length)), the smallest square that
// holds the encoded identifier plus the four reserved corners.
func GridSize(length int) int {
	need := reservedCells + BitsPerChar*length
	n := int(math.Ceil(math.Sqrt(float64(need))))
	for n*n < need {
		n++
	}
	return n
}

// InAlphabet reports whether ch is an identifier symbol, ignoring case.
func InAlphabet(ch byte) bool {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	return strings.IndexByte(Alphabet, ch) >= 0
}

// Scheme is the encoding configuration a pattern is produced under.
type Scheme struct {
	IDLength int
	CellSize int
}

// DefaultScheme returns the current scheme: 6-character identifiers on a
// 7×7 grid.
func DefaultScheme() Scheme {
	return Scheme{IDLength: DefaultLength, CellSize: DefaultCellSize}
}

// GridSize returns N for the scheme.
func (s Scheme) GridSize() int { return GridSize(s.IDLength) }
