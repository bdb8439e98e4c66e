package codec

import (
	"fmt"

	"github.com/rcliao/memory-stitch/internal/model"
)

// Builder produces complete pattern records from memory content under one
// scheme.
type Builder struct {
	scheme Scheme
	gen    *Generator
	codec  *Codec
}

// NewBuilder returns a builder for s.
func NewBuilder(s Scheme) (*Builder, error) {
	if s.CellSize <= 0 {
		return nil, fmt.Errorf("invalid cell size %d", s.CellSize)
	}
	c, err := NewCodec(s.IDLength)
	if err != nil {
		return nil, err
	}
	return &Builder{scheme: s, gen: NewGenerator(s.IDLength), codec: c}, nil
}

// Scheme returns the builder's scheme.
func (b *Builder) Scheme() Scheme { return b.scheme }

// Codec returns the builder's codec.
func (b *Builder) Codec() *Codec { return b.codec }

// Generator returns the builder's identifier generator.
func (b *Builder) Generator() *Generator { return b.gen }

// WithGenerator returns a copy of b using gen. gen must produce identifiers
// of the scheme's length.
func (b *Builder) WithGenerator(gen *Generator) *Builder {
	cp := *b
	cp.gen = gen
	return &cp
}

// Build generates the identifier for m and encodes it.
func (b *Builder) Build(m model.MemoryContent) (model.PatternRecord, error) {
	id := b.gen.Generate(m)
	grid, err := b.codec.Encode(id)
	if err != nil {
		return model.PatternRecord{}, fmt.Errorf("encode %q: %w", id, err)
	}
	return model.PatternRecord{
		Grid:       grid,
		Identifier: id,
		Scheme: model.SchemeConfig{
			GridSize: b.codec.Size(),
			CellSize: b.scheme.CellSize,
		},
	}, nil
}
