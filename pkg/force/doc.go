// Package force implements an alpha-cooled, velocity-Verlet style force
// simulation for laying out node-link graphs.
//
// # Model
//
// A [Simulation] owns an arena of [Body] values, one per node, and a slice of
// [Spring] values whose endpoints are arena indices. Node ids are resolved to
// indices once, in [New]; a link naming an unknown id fails setup with an
// UNRESOLVED_LINK error.
//
// Each tick:
//
//  1. alpha += (alphaTarget - alpha) * alphaDecay
//  2. the link force nudges endpoint velocities toward the target distance
//  3. the many-body force applies charge between all pairs, approximated
//     with a Barnes-Hut quadtree (gonum spatial/barneshut)
//  4. the center force shifts all positions so their mean sits at the center
//  5. free bodies integrate: v *= 1 - velocityDecay; p += v.
//     Pinned bodies snap to their fixed position with zero velocity.
//
// With the defaults, alpha starts at 1 and decays by about 2.28% per tick,
// crossing alphaMin (0.001) after 300 ticks, at which point [Simulation.Step]
// stops ticking until the simulation is reheated.
//
// # Usage
//
//	sim, err := force.New(g, force.Config{Width: 900, Height: 600})
//	if err != nil {
//	    return err // configuration error
//	}
//	sim.Run(ctx, 0)
//	for _, b := range sim.Bodies() {
//	    fmt.Println(b.ID, b.X, b.Y)
//	}
//
// # Concurrency
//
// A Simulation is not safe for concurrent use. Frame-driven hosts call it from
// a single goroutine; see package engine.
package force
