package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/memory-stitch/internal/codec"
	"github.com/rcliao/memory-stitch/internal/model"
	"github.com/rcliao/memory-stitch/internal/optical"
	"github.com/rcliao/memory-stitch/internal/store"
)

var errLowConfidence = errors.New("confidence below threshold")

type lookuper interface {
	Lookup(ctx context.Context, identifier string) (*model.SavedPattern, error)
}

// resolution is what a read grid resolved to. Match is nil when the
// identifier is incomplete or unknown.
type resolution struct {
	Identifier string          `json:"identifier"`
	Complete   bool            `json:"complete"`
	Wildcards  int             `json:"wildcards"`
	Confidence float64         `json:"confidence"`
	Match      *patternSummary `json:"match,omitempty"`
}

// resolve decodes a found grid and looks up the memory it belongs to.
// Grids read with less than minConfidence are rejected before decoding.
// Identifiers with wildcards are reported without a lookup.
func resolve(ctx context.Context, l lookuper, c *codec.Codec, found optical.Found, minConfidence float64) (*resolution, error) {
	if found.Confidence < minConfidence {
		return nil, fmt.Errorf("%w: %.2f < %.2f", errLowConfidence, found.Confidence, minConfidence)
	}

	dec, err := codec.NewOpticalDecoder(c).Decode(found.Grid)
	if err != nil {
		return nil, err
	}
	res := &resolution{
		Identifier: dec.Identifier,
		Complete:   dec.Complete,
		Wildcards:  dec.Wildcards(),
		Confidence: found.Confidence,
	}
	if !dec.Complete {
		logger.Info("identifier incomplete", zap.String("identifier", dec.Identifier), zap.Int("wildcards", res.Wildcards))
		return res, nil
	}

	p, err := l.Lookup(ctx, dec.Identifier)
	if errors.Is(err, store.ErrNotFound) {
		logger.Info("no saved pattern", zap.String("identifier", dec.Identifier))
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	m := summarize(*p)
	res.Match = &m
	return res, nil
}
