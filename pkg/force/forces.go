package force

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// =============================================================================
// Link force
// =============================================================================

// applyLinks pulls or pushes each linked pair toward its rest distance using
// the positions both ends will have after this tick's velocity.
func (s *Simulation) applyLinks() {
	for i := range s.springs {
		sp := &s.springs[i]
		if sp.SelfLoop() {
			continue
		}
		src, tgt := &s.bodies[sp.Source], &s.bodies[sp.Target]
		x := tgt.X + tgt.VX - src.X - src.VX
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		l := math.Sqrt(x*x + y*y)
		l = (l - sp.Distance) / l * s.alpha * sp.Strength
		x *= l
		y *= l
		tgt.VX -= x * sp.Bias
		tgt.VY -= y * sp.Bias
		src.VX += x * (1 - sp.Bias)
		src.VY += y * (1 - sp.Bias)
	}
}

// =============================================================================
// Many-body force
// =============================================================================

// charge adapts a body to barneshut.Particle2. Mass is the charge magnitude;
// the sign is applied in the force function.
type charge struct {
	b        *Body
	strength float64
}

func (c *charge) Coord2() r2.Vec { return r2.Vec{X: c.b.X, Y: c.b.Y} }
func (c *charge) Mass() float64  { return math.Abs(c.strength) }

// applyManyBody applies charge between every pair of bodies. When all
// charges share a sign and none is zero, a Barnes-Hut quadtree
// approximates distant groups by their center of charge. Mixed signs fall
// back to exact pairwise evaluation since the tree aggregates magnitudes.
func (s *Simulation) applyManyBody() {
	if len(s.bodies) < 2 {
		return
	}
	s.separateCoincident()

	particles := make([]barneshut.Particle2, len(s.bodies))
	sign, uniform := 0.0, true
	for i := range s.bodies {
		q := s.charges[i]
		particles[i] = &charge{b: &s.bodies[i], strength: q}
		switch {
		case q == 0:
			uniform = false
		case sign == 0:
			sign = math.Copysign(1, q)
		case math.Copysign(1, q) != sign:
			uniform = false
		}
	}
	if sign == 0 {
		return // every charge is zero
	}

	theta := s.cfg.Theta
	plane := &barneshut.Plane{Particles: particles}
	if uniform && theta > 0 {
		if p, err := barneshut.NewPlane(particles); err == nil {
			plane = p
		} else {
			theta = 0
		}
	} else {
		theta = 0
	}

	dmin2 := s.cfg.DistanceMin * s.cfg.DistanceMin
	dmax2 := s.cfg.DistanceMax * s.cfg.DistanceMax
	alpha := s.alpha

	f := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		var strength float64
		if p2 == nil {
			// Aggregate tile: the center is mass weighted and valid.
			strength = sign * m2
		} else {
			if p2 == p1 {
				return r2.Vec{}
			}
			other := p2.(*charge)
			strength = other.strength
			// Leaf tiles do not keep a usable center; use the particle.
			v = r2.Sub(other.Coord2(), p1.Coord2())
		}
		if strength == 0 {
			return r2.Vec{}
		}
		l := v.X*v.X + v.Y*v.Y
		if l >= dmax2 {
			return r2.Vec{}
		}
		if l == 0 {
			v = r2.Vec{X: s.jiggle(), Y: s.jiggle()}
			l = v.X*v.X + v.Y*v.Y
		}
		if l < dmin2 {
			l = math.Sqrt(dmin2 * l)
		}
		return r2.Scale(strength*alpha/l, v)
	}

	for i, p := range particles {
		dv := plane.ForceOn(p, theta, f)
		s.bodies[i].VX += dv.X
		s.bodies[i].VY += dv.Y
	}
}

// separateCoincident nudges bodies that share an exact position, which the
// quadtree cannot subdivide.
func (s *Simulation) separateCoincident() {
	seen := make(map[[2]float64]struct{}, len(s.bodies))
	for i := range s.bodies {
		b := &s.bodies[i]
		key := [2]float64{b.X, b.Y}
		if _, dup := seen[key]; dup && !b.fixed {
			b.X += s.jiggle()
			b.Y += s.jiggle()
			key = [2]float64{b.X, b.Y}
		}
		seen[key] = struct{}{}
	}
}

// =============================================================================
// Center force
// =============================================================================

// applyCenter translates all bodies so their mean position moves toward the
// center. It does not change relative positions.
func (s *Simulation) applyCenter() {
	n := len(s.bodies)
	if n == 0 || s.cfg.CenterStrength < 0 {
		return
	}
	var sx, sy float64
	for i := range s.bodies {
		sx += s.bodies[i].X
		sy += s.bodies[i].Y
	}
	sx = (sx/float64(n) - s.cx) * s.cfg.CenterStrength
	sy = (sy/float64(n) - s.cy) * s.cfg.CenterStrength
	for i := range s.bodies {
		s.bodies[i].X -= sx
		s.bodies[i].Y -= sy
	}
}
