package force

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Defaults mirror the classic d3-force parameters.
const (
	DefaultAlpha            = 1.0
	DefaultAlphaMin         = 0.001
	DefaultAlphaTarget      = 0.0
	DefaultVelocityDecay    = 0.4
	DefaultCharge           = -30.0
	DefaultTheta            = 0.9
	DefaultDistanceMin      = 1.0
	DefaultLinkDistance     = 30.0
	DefaultLinkIterations   = 1
	DefaultCenterStrength   = 1.0
	DefaultConvergenceTicks = 300
	initialRadius           = 10.0
	jiggleMagnitude         = 1e-6
)

// DefaultAlphaDecay is the per-tick decay that takes alpha from 1 to
// DefaultAlphaMin in DefaultConvergenceTicks ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/DefaultConvergenceTicks)

// Config holds simulation parameters. Zero values select defaults.
type Config struct {
	// Width and Height define the drawing area. The center force pulls
	// toward (Width/2, Height/2). Both must be positive.
	Width  float64
	Height float64

	// Charge is the many-body strength per node. Negative repels.
	Charge graph.NodeNumber
	// Theta is the Barnes-Hut accuracy parameter. Zero selects
	// DefaultTheta; negative selects exact pairwise evaluation.
	Theta float64
	// DistanceMin and DistanceMax bound the many-body interaction distance.
	DistanceMin float64
	DistanceMax float64

	// LinkDistance is the spring rest length. Links with Distance set use
	// their own value when this is nil.
	LinkDistance graph.LinkNumber
	// LinkStrength is the spring stiffness. Nil selects the degree-based
	// default 1/min(deg(source), deg(target)), or the link's own Strength.
	LinkStrength graph.LinkNumber
	// LinkIterations repeats the link force per tick for rigid graphs.
	LinkIterations int

	// CenterStrength scales the centering shift. Negative disables it.
	CenterStrength float64

	Alpha    float64
	AlphaMin float64
	// AlphaDecay is the per-tick cooling rate in (0, 1). Zero selects
	// DefaultAlphaDecay; a simulation that never cools cannot be asked for.
	AlphaDecay  float64
	AlphaTarget float64
	// VelocityDecay is the per-tick friction in (0, 1]. Zero selects
	// DefaultVelocityDecay.
	VelocityDecay float64

	// Seed drives the jiggle used to separate coincident bodies.
	Seed uint64
}

// Validate checks the parameters that have no sensible default.
func (c Config) Validate() error {
	if err := errors.ValidateDimensions(c.Width, c.Height); err != nil {
		return err
	}
	if c.AlphaDecay < 0 || c.AlphaDecay >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha decay must be in (0, 1) or 0 for the default, got %v", c.AlphaDecay)
	}
	if c.VelocityDecay < 0 || c.VelocityDecay > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "velocity decay must be in (0, 1] or 0 for the default, got %v", c.VelocityDecay)
	}
	if c.AlphaMin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha min must be non-negative, got %v", c.AlphaMin)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Charge == nil {
		c.Charge = graph.ConstNode(DefaultCharge)
	}
	if c.Theta == 0 {
		c.Theta = DefaultTheta
	}
	if c.DistanceMin <= 0 {
		c.DistanceMin = DefaultDistanceMin
	}
	if c.DistanceMax <= 0 {
		c.DistanceMax = math.Inf(1)
	}
	if c.LinkDistance == nil {
		c.LinkDistance = func(l *graph.Link) float64 {
			if l.Distance > 0 {
				return l.Distance
			}
			return DefaultLinkDistance
		}
	}
	if c.LinkIterations <= 0 {
		c.LinkIterations = DefaultLinkIterations
	}
	if c.CenterStrength == 0 {
		c.CenterStrength = DefaultCenterStrength
	}
	if c.Alpha == 0 {
		c.Alpha = DefaultAlpha
	}
	if c.AlphaMin == 0 {
		c.AlphaMin = DefaultAlphaMin
	}
	if c.AlphaDecay == 0 {
		c.AlphaDecay = DefaultAlphaDecay
	}
	if c.VelocityDecay == 0 {
		c.VelocityDecay = DefaultVelocityDecay
	}
	return c
}
