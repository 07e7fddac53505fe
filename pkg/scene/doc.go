// Package scene orchestrates the lifecycle of visual presentation units.
//
// A presenter is a unit of visible content with a managed
// load/open/close/unload lifecycle. The [Service] owns every registry
// (descriptors, sets, live instances, layers) and is the sole caller of
// presenter and hook lifecycle methods. Callers describe their presenters
// with [Descriptor] values, group them into named [Set] values, and drive
// them through the service:
//
//	svc := scene.New(assets.NewMemoryProvider())
//	err := svc.Init(
//	    []scene.Descriptor{
//	        {Type: "hud", Locator: "ui/hud.scene", Layer: 2, New: NewHUD},
//	        {Type: "menu", Locator: "ui/menu.scene", Layer: 5, New: NewMenu},
//	    },
//	    []scene.Set{
//	        {ID: "frontend", Members: []string{"hud", "menu"}},
//	    },
//	)
//	// ...
//	inst, err := svc.Load(ctx, scene.ByType("hud"), true)
//	// ...
//	defer svc.Dispose(context.Background())
//
// # Layers
//
// Every descriptor names an integer layer, a pure paint-order and grouping
// key. Layer containers are created lazily on first use and persist for the
// service lifetime. Bulk operations such as [Service.CloseAllInLayer] use
// the layer key to select their targets.
//
// # Hooks
//
// Cross-cutting presenter behaviors (timed delays, animation-synchronized
// transitions, alternate container bindings) attach as independent [Hook]
// objects declared on the descriptor, not as presenter subclasses. Hooks
// are instantiated once per presenter instance at load time and observe
// every transition in a fixed order relative to the presenter's own
// callbacks; see [Hook] for the exact ordering. Ready-made hooks live in
// the hooks package.
//
// # Concurrency
//
// The service serializes all registry mutation internally and releases its
// lock only across asset provider calls, which is where in-flight logical
// operations interleave. Duplicate concurrent loads for one (type, address)
// key collapse to a single registered instance; the loser's resource is
// released, never leaked. Open/close transitions on one instance are
// serialized by a per-instance guard; redundant calls are warnings, not
// errors.
package scene
