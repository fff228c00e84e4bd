// Package engine runs one force-directed graph on one surface.
//
// An [Engine] owns a [force.Simulation], an [interact.Controller] and a
// [render.Binder]. Mount binds a surface and starts a [Scheduler]; every
// frame advances the solver by one tick and redraws. Once the solver goes
// idle and the entry animation has finished, the scheduler stops calling
// Frame until an interaction reheats the solver and wakes it.
//
// Two schedulers are provided. [TickerScheduler] drives frames from its own
// goroutine and is used by the live server. [Manual] leaves frame driving to
// the host, which suits event loops such as the terminal viewer:
//
//	eng, err := engine.New(g, engine.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	if err := eng.Mount(canvas); err != nil {
//		return err
//	}
//	for eng.Frame() {
//		// wait for the next tick
//	}
//
// Engine methods lock internally. With a TickerScheduler, events that must
// not interleave with a frame should be routed through [Engine.Post].
package engine
