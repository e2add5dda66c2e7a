package radial

import (
	"math"

	"github.com/matzehuels/msttree/pkg/errors"
)

const (
	DefaultLinkScale     = 500.0
	DefaultNodeSize      = 10.0
	DefaultMaxLinkLength = 10000.0

	logExponent = 0.8
)

// Options controls the scale of a layout.
type Options struct {
	// LinkScale is the pixel length of the longest link.
	LinkScale float64
	// NodeSize is the base node size in pixels.
	NodeSize float64
	// MaxLinkLength clamps longer links. Zero disables clamping.
	MaxLinkLength float64
	// LogScale raises pixel lengths to the power of 0.8.
	LogScale bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		LinkScale:     DefaultLinkScale,
		NodeSize:      DefaultNodeSize,
		MaxLinkLength: DefaultMaxLinkLength,
	}
}

// Validate reports an INVALID_CONFIG error for unusable options.
func (o Options) Validate() error {
	if err := errors.ValidatePositive("link scale", o.LinkScale); err != nil {
		return err
	}
	if err := errors.ValidatePositive("node size", o.NodeSize); err != nil {
		return err
	}
	return errors.ValidateNonNegative("max link length", o.MaxLinkLength)
}

// pixelLengths converts link lengths, indexed like lengths, to pixels. The
// second return value is the reference radius for node footprints: the
// longest pixel length, or LinkScale when every length is zero.
func (o Options) pixelLengths(lengths []float64) ([]float64, float64) {
	clamped := make([]float64, len(lengths))
	var longest float64
	for i, l := range lengths {
		if o.MaxLinkLength > 0 {
			l = min(l, o.MaxLinkLength)
		}
		clamped[i] = l
		longest = max(longest, l)
	}
	if longest == 0 {
		longest = 1
	}

	scale := o.LinkScale / longest
	var ref float64
	for i, l := range clamped {
		px := l * scale
		if o.LogScale {
			px = math.Pow(px, logExponent)
		}
		clamped[i] = px
		ref = max(ref, px)
	}
	if ref == 0 {
		ref = o.LinkScale
	}
	return clamped, ref
}
