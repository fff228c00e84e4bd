// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about simulation progress, user interaction, and rendering.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the solver and render
// packages never import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSimulationHooks(&mySimulationHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Simulation().OnSetup(ctx, nodeCount, linkCount)
//	// ... tick until idle ...
//	observability.Simulation().OnConverged(ctx, ticks, alpha)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from the force solver.
type SimulationHooks interface {
	// OnSetup fires once the arena is built and links are resolved.
	OnSetup(ctx context.Context, nodes, links int)

	// OnConverged fires when alpha drops below alphaMin and ticking stops.
	OnConverged(ctx context.Context, ticks int, alpha float64)

	// OnReheat fires when alpha is raised, typically by a drag.
	OnReheat(ctx context.Context, alpha float64)
}

// =============================================================================
// Interaction Hooks
// =============================================================================

// InteractionHooks receives events from the interaction controller.
type InteractionHooks interface {
	OnDragStart(ctx context.Context, nodeID string)
	OnDragEnd(ctx context.Context, nodeID string)
	OnZoom(ctx context.Context, scale float64)
}

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from renderers and sinks.
type RenderHooks interface {
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnSetup(context.Context, int, int)         {}
func (NoopSimulationHooks) OnConverged(context.Context, int, float64) {}
func (NoopSimulationHooks) OnReheat(context.Context, float64)         {}

// NoopInteractionHooks is a no-op implementation of InteractionHooks.
type NoopInteractionHooks struct{}

func (NoopInteractionHooks) OnDragStart(context.Context, string) {}
func (NoopInteractionHooks) OnDragEnd(context.Context, string)   {}
func (NoopInteractionHooks) OnZoom(context.Context, float64)     {}

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	simulationHooks  SimulationHooks  = NoopSimulationHooks{}
	interactionHooks InteractionHooks = NoopInteractionHooks{}
	renderHooks      RenderHooks      = NoopRenderHooks{}
	hooksMu          sync.RWMutex
)

// SetSimulationHooks registers custom simulation hooks.
// This should be called once at application startup before any simulation is built.
func SetSimulationHooks(h SimulationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simulationHooks = h
	}
}

// SetInteractionHooks registers custom interaction hooks.
func SetInteractionHooks(h InteractionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		interactionHooks = h
	}
}

// SetRenderHooks registers custom render hooks.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simulationHooks
}

// Interaction returns the registered interaction hooks.
func Interaction() InteractionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return interactionHooks
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	simulationHooks = NoopSimulationHooks{}
	interactionHooks = NoopInteractionHooks{}
	renderHooks = NoopRenderHooks{}
}
