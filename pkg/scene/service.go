package scene

import (
	"context"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/go-drift/scene/pkg/assets"
	"github.com/go-drift/scene/pkg/errors"
)

// Option configures a Service.
type Option func(*Service)

// WithObserver installs a lifecycle event observer.
// The default is NopObserver.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithContainers installs the source of layer containers.
// The default produces in-memory containers.
func WithContainers(cs assets.ContainerSource) Option {
	return func(s *Service) {
		if cs != nil {
			s.containers = cs
		}
	}
}

// WithClock installs the clock used for event timestamps.
// Tests inject a fake clock for deterministic event times.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// Service is the presenter lifecycle orchestrator. It owns the descriptor,
// set, instance, and layer registries and is the sole caller of presenter
// and hook lifecycle methods.
//
// All registry mutation is serialized by an internal lock. The lock is
// released across asset provider calls, which is where in-flight logical
// operations interleave; presenter and hook callbacks also run unlocked so
// they may call back into the service.
type Service struct {
	provider   assets.Provider
	containers assets.ContainerSource
	observer   Observer
	clock      clockwork.Clock

	mu          sync.Mutex
	descriptors map[string]Descriptor
	sets        map[string]Set
	instances   map[Ref]*Instance
	visible     map[Ref]*Instance
	layers      map[int]*Layer
	initialized bool
	disposed    bool
}

// New creates a service backed by the given asset provider.
func New(provider assets.Provider, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		containers:  assets.MemoryContainers{},
		observer:    NopObserver{},
		clock:       clockwork.NewRealClock(),
		descriptors: make(map[string]Descriptor),
		sets:        make(map[string]Set),
		instances:   make(map[Ref]*Instance),
		visible:     make(map[Ref]*Instance),
		layers:      make(map[int]*Layer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init registers all descriptors and sets. It may be called exactly once.
// Registration is all-or-nothing: any duplicate type, duplicate set id, or
// set member without a descriptor fails the whole call and registers
// nothing. Duplicate registration is a hard failure, not a warning.
func (s *Service) Init(descriptors []Descriptor, sets []Set) error {
	const op = "scene.Init"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return errors.New(op, errors.KindInvalidState, "service is disposed")
	}
	if s.initialized {
		return errors.New(op, errors.KindInvalidState, "service is already initialized")
	}

	stagedDescriptors := make(map[string]Descriptor, len(descriptors))
	for _, desc := range descriptors {
		if desc.Type == "" {
			return errors.New(op, errors.KindInvalidState, "descriptor with empty type")
		}
		if desc.New == nil {
			return errors.New(op, errors.KindInvalidState, "descriptor %q has no presenter factory", desc.Type)
		}
		if _, exists := stagedDescriptors[desc.Type]; exists {
			err := errors.New(op, errors.KindDuplicateRegistration, "descriptor %q registered twice", desc.Type)
			err.PresenterType = desc.Type
			return err
		}
		stagedDescriptors[desc.Type] = desc
	}

	stagedSets := make(map[string]Set, len(sets))
	for _, set := range sets {
		if set.ID == "" {
			return errors.New(op, errors.KindInvalidState, "set with empty id")
		}
		if _, exists := stagedSets[set.ID]; exists {
			return errors.New(op, errors.KindDuplicateRegistration, "set %q registered twice", set.ID)
		}
		for _, member := range set.Members {
			if _, ok := stagedDescriptors[member]; !ok {
				err := errors.New(op, errors.KindConfigNotFound, "set %q references unregistered type %q", set.ID, member)
				err.PresenterType = member
				return err
			}
		}
		stagedSets[set.ID] = Set{ID: set.ID, Members: append([]string(nil), set.Members...)}
	}

	s.descriptors = stagedDescriptors
	s.sets = stagedSets
	s.initialized = true
	return nil
}

// event builds a lifecycle event for a descriptor.
func (s *Service) event(desc Descriptor, destroyed bool) Event {
	return Event{
		Type:      desc.Type,
		Layer:     desc.Layer,
		Time:      s.clock.Now(),
		Destroyed: destroyed,
	}
}

// layerLocked returns the layer for the given number, creating it and its
// container lazily. Caller holds s.mu.
func (s *Service) layerLocked(number int) *Layer {
	if l, ok := s.layers[number]; ok {
		return l
	}
	l := &Layer{number: number, container: s.containers.Layer(number)}
	s.layers[number] = l
	return l
}

// notFound builds the ConfigNotFound error for an unregistered type.
func notFound(op, presenterType string) error {
	err := errors.New(op, errors.KindConfigNotFound, "no descriptor registered for type %q", presenterType)
	err.PresenterType = presenterType
	return err
}

// Load resolves the descriptor for ref, instantiates its resource through
// the asset provider, and registers the new instance inactive. Loading an
// already-loaded instance warns and returns the existing one. If openAfter
// is true the instance is opened once loading completes.
//
// The provider call is a suspension point: when two loads for the same ref
// overlap, the one that finishes second discovers the winner in the
// registry, releases its own freshly-created resource, and returns the
// winner. A ctx canceled after the resource was created likewise releases
// it before returning, so cancellation never orphans a resource.
func (s *Service) Load(ctx context.Context, ref Ref, openAfter bool) (*Instance, error) {
	const op = "scene.Load"

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, errors.New(op, errors.KindInvalidState, "service is disposed")
	}
	desc, ok := s.descriptors[ref.Type]
	if !ok {
		s.mu.Unlock()
		return nil, notFound(op, ref.Type)
	}
	if inst, loaded := s.instances[ref]; loaded {
		s.mu.Unlock()
		errors.Warn(op, "presenter %s is already loaded", ref)
		if openAfter {
			if err := s.Open(ref); err != nil {
				return inst, err
			}
		}
		return inst, nil
	}
	layer := s.layerLocked(desc.Layer)
	s.mu.Unlock()

	s.observer.LoadStarted(s.event(desc, false))

	visual, err := s.provider.Instantiate(ctx, desc.Locator, layer.Container(), desc.Mode == LoadSync)
	if err != nil {
		kind := errors.KindAsset
		if ctx.Err() != nil {
			kind = errors.KindCanceled
		}
		serr := errors.Wrap(op, kind, err)
		serr.PresenterType = ref.Type
		return nil, serr
	}

	s.mu.Lock()
	if winner, loaded := s.instances[ref]; loaded {
		// A concurrent load for the same key finished first while we were
		// suspended. Keep the winner, release this result.
		s.mu.Unlock()
		errors.Warn(op, "duplicate concurrent load of %s collapsed", ref)
		s.releaseVisual(op, ref.Type, visual)
		if openAfter {
			if err := s.Open(ref); err != nil {
				return winner, err
			}
		}
		return winner, nil
	}
	if cerr := ctx.Err(); cerr != nil {
		s.mu.Unlock()
		s.releaseVisual(op, ref.Type, visual)
		serr := errors.Wrap(op, errors.KindCanceled, cerr)
		serr.PresenterType = ref.Type
		return nil, serr
	}
	if s.disposed {
		s.mu.Unlock()
		s.releaseVisual(op, ref.Type, visual)
		return nil, errors.New(op, errors.KindInvalidState, "service disposed during load")
	}

	inst := &Instance{
		desc:      desc,
		ref:       ref,
		presenter: desc.New(),
		layer:     layer,
		state:     StateLoading,
		visual:    visual,
	}
	for _, factory := range desc.Hooks {
		inst.hooks = append(inst.hooks, factory())
	}
	s.instances[ref] = inst
	s.mu.Unlock()

	inst.presenter.OnInitialized(inst)
	for _, h := range inst.hooks {
		h.Initialized(inst)
	}
	inst.setState(StateLoaded)

	s.observer.LoadCompleted(s.event(desc, false))

	if openAfter {
		if err := s.Open(ref); err != nil {
			return inst, err
		}
	}
	return inst, nil
}

// releaseVisual releases a visual that lost a race or was canceled,
// reporting rather than returning any release failure.
func (s *Service) releaseVisual(op, presenterType string, v assets.Visual) {
	if err := s.provider.Release(v); err != nil {
		serr := errors.Wrap(op, errors.KindAsset, err)
		serr.PresenterType = presenterType
		errors.Report(serr)
	}
}

// Open activates a loaded instance. Opening an already-open instance warns
// and is a no-op. Opening an unloaded type fails with InvalidState;
// opening an unregistered type fails with ConfigNotFound.
func (s *Service) Open(ref Ref) error {
	return s.open(ref, nil, false)
}

// OpenWith stages a payload for the presenter and opens the instance. The
// payload reaches the presenter's ApplyData exactly once, immediately
// before OnOpened. If the instance is already open the call warns and the
// payload stays staged for the next open.
func (s *Service) OpenWith(ref Ref, data any) error {
	return s.open(ref, data, true)
}

func (s *Service) open(ref Ref, data any, hasData bool) error {
	const op = "scene.Open"

	s.mu.Lock()
	inst, ok := s.instances[ref]
	if !ok {
		_, registered := s.descriptors[ref.Type]
		s.mu.Unlock()
		if !registered {
			return notFound(op, ref.Type)
		}
		err := errors.New(op, errors.KindInvalidState, "presenter %s is not loaded", ref)
		err.PresenterType = ref.Type
		return err
	}
	if hasData {
		inst.stageData(data)
	}
	switch state := inst.State(); state {
	case StateOpen:
		s.mu.Unlock()
		errors.Warn(op, "presenter %s is already open", ref)
		return nil
	case StateLoaded, StateClosed:
		// proceed
	default:
		s.mu.Unlock()
		err := errors.New(op, errors.KindInvalidState, "cannot open presenter %s in state %s", ref, state)
		err.PresenterType = ref.Type
		return err
	}
	if !inst.beginTransition(StateOpen) {
		s.mu.Unlock()
		errors.Warn(op, "open of %s skipped, transition already in flight", ref)
		return nil
	}
	// The state flips optimistically here: IsVisible is true from this
	// point even though hooks may defer their own completion.
	s.visible[ref] = inst
	s.mu.Unlock()

	s.observer.OpenStarted(s.event(inst.desc, false))

	for _, h := range inst.hooks {
		h.Opening(inst)
	}

	if v := inst.Visual(); v != nil {
		v.SetVisible(true)
	}

	if payload, staged := inst.takeData(); staged {
		if receiver, accepts := inst.presenter.(DataReceiver); accepts {
			receiver.ApplyData(payload)
		}
	}
	inst.presenter.OnOpened(inst)
	for _, h := range inst.hooks {
		h.Opened(inst)
	}

	inst.endTransition()
	s.observer.OpenCompleted(s.event(inst.desc, false))
	return nil
}

// Close deactivates an open instance. Closing a non-visible instance warns
// and is a no-op. A DeactivationDelayer hook may hold the visual active
// past this call's return; destroy forces immediate deactivation
// regardless of pending delays and unloads the instance afterward.
func (s *Service) Close(ref Ref, destroy bool) error {
	const op = "scene.Close"

	s.mu.Lock()
	inst, ok := s.instances[ref]
	if !ok {
		_, registered := s.descriptors[ref.Type]
		s.mu.Unlock()
		if !registered {
			return notFound(op, ref.Type)
		}
		errors.Warn(op, "presenter %s is not visible", ref)
		return nil
	}
	if inst.State() != StateOpen {
		s.mu.Unlock()
		errors.Warn(op, "presenter %s is not visible", ref)
		return nil
	}
	if !inst.beginTransition(StateClosed) {
		s.mu.Unlock()
		errors.Warn(op, "close of %s skipped, transition already in flight", ref)
		return nil
	}
	delete(s.visible, ref)
	s.mu.Unlock()

	s.observer.CloseStarted(s.event(inst.desc, destroy))

	for _, h := range inst.hooks {
		h.Closing(inst)
	}
	inst.presenter.OnClosed(inst)
	for _, h := range inst.hooks {
		h.Closed(inst)
	}

	inst.endTransition()
	s.observer.CloseCompleted(s.event(inst.desc, destroy))

	if destroy {
		inst.clearDelays()
		if v := inst.Visual(); v != nil {
			v.SetVisible(false)
		}
		return s.Unload(context.Background(), ref)
	}

	s.deactivate(inst)
	return nil
}

// deactivate hides the instance's visual, unless a DeactivationDelayer
// hook takes ownership of doing so later.
func (s *Service) deactivate(inst *Instance) {
	release := func() {
		if hide, v := inst.releaseDelay(); hide && v != nil {
			v.SetVisible(false)
		}
	}

	// The sentinel delay keeps the count positive while hooks are being
	// offered, so an early decline cannot deactivate ahead of a later
	// hook accepting.
	inst.addDelays(1)
	for _, h := range inst.hooks {
		delayer, ok := h.(DeactivationDelayer)
		if !ok {
			continue
		}
		inst.addDelays(1)
		if !delayer.DelayDeactivation(inst, release) {
			release()
		}
	}
	release()
}

// Unload removes the instance from the registry and releases its resource
// through the asset provider. A visible instance is force-closed first.
// Unloading a not-loaded type warns and is a no-op; an unregistered type
// fails with ConfigNotFound.
func (s *Service) Unload(ctx context.Context, ref Ref) error {
	const op = "scene.Unload"

	s.mu.Lock()
	inst, ok := s.instances[ref]
	if !ok {
		_, registered := s.descriptors[ref.Type]
		s.mu.Unlock()
		if !registered {
			return notFound(op, ref.Type)
		}
		errors.Warn(op, "presenter %s is not loaded", ref)
		return nil
	}
	s.mu.Unlock()

	if inst.IsVisible() {
		if err := s.Close(ref, false); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if current, still := s.instances[ref]; !still || current != inst {
		// A re-entrant close(destroy) or concurrent unload already removed it.
		s.mu.Unlock()
		return nil
	}
	delete(s.instances, ref)
	delete(s.visible, ref)
	s.mu.Unlock()

	inst.clearDelays()
	inst.setState(StateUnloading)
	if visual := inst.takeVisual(); visual != nil {
		visual.SetVisible(false)
		if err := s.provider.Release(visual); err != nil {
			inst.setState(StateUnloaded)
			serr := errors.Wrap(op, errors.KindAsset, err)
			serr.PresenterType = ref.Type
			return serr
		}
	}
	inst.setState(StateUnloaded)

	s.observer.Unloaded(s.event(inst.desc, true))
	return nil
}

// CloseAll closes every visible instance.
func (s *Service) CloseAll() error {
	return s.closeAll(nil)
}

// CloseAllInLayer closes every visible instance in the given layer.
func (s *Service) CloseAllInLayer(layer int) error {
	return s.closeAll(&layer)
}

func (s *Service) closeAll(layer *int) error {
	// Closing removes entries from the visible set, so iterate a snapshot
	// of the membership, never the live map.
	s.mu.Lock()
	refs := make([]Ref, 0, len(s.visible))
	for ref, inst := range s.visible {
		if layer != nil && inst.desc.Layer != *layer {
			continue
		}
		refs = append(refs, ref)
	}
	s.mu.Unlock()

	var firstErr error
	for _, ref := range refs {
		if err := s.Close(ref, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// memberRefs resolves a set id to its member refs.
func (s *Service) memberRefs(op, setID string) ([]Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[setID]
	if !ok {
		return nil, errors.New(op, errors.KindConfigNotFound, "no set registered for id %q", setID)
	}
	refs := make([]Ref, len(set.Members))
	for i, member := range set.Members {
		refs[i] = ByType(member)
	}
	return refs, nil
}

// LoadSet loads every member of the set that is not already loaded.
// Already-loaded members are skipped, not repeated. Missing members load
// concurrently and results arrive in first-finished order, not declaration
// order. The first failure cancels the remaining loads and is returned
// along with whatever instances completed; members are left in whatever
// state they individually reached.
func (s *Service) LoadSet(ctx context.Context, setID string) ([]*Instance, error) {
	const op = "scene.LoadSet"

	refs, err := s.memberRefs(op, setID)
	if err != nil {
		return nil, err
	}

	results := make([]*Instance, 0, len(refs))
	var missing []Ref
	for _, ref := range refs {
		if inst, loaded := s.Get(ref); loaded {
			results = append(results, inst)
			continue
		}
		missing = append(missing, ref)
	}
	if len(missing) == 0 {
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		inst *Instance
		err  error
	}
	outcomes := make(chan outcome, len(missing))
	for _, ref := range missing {
		go func(ref Ref) {
			inst, err := s.Load(ctx, ref, false)
			outcomes <- outcome{inst: inst, err: err}
		}(ref)
	}

	var firstErr error
	for range missing {
		out := <-outcomes
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
				cancel()
			}
			continue
		}
		results = append(results, out.inst)
	}
	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

// OpenSet opens every member of the set that is not already open, in
// declaration order. The first failure aborts the fan-out.
func (s *Service) OpenSet(setID string) error {
	const op = "scene.OpenSet"

	refs, err := s.memberRefs(op, setID)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if s.IsVisible(ref) {
			continue
		}
		if err := s.Open(ref); err != nil {
			return err
		}
	}
	return nil
}

// CloseSet closes every member of the set that is currently open, in
// declaration order. The first failure aborts the fan-out.
func (s *Service) CloseSet(setID string) error {
	const op = "scene.CloseSet"

	refs, err := s.memberRefs(op, setID)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if !s.IsVisible(ref) {
			continue
		}
		if err := s.Close(ref, false); err != nil {
			return err
		}
	}
	return nil
}

// UnloadSet unloads every member of the set that is currently loaded, in
// declaration order. The first failure aborts the fan-out.
func (s *Service) UnloadSet(ctx context.Context, setID string) error {
	const op = "scene.UnloadSet"

	refs, err := s.memberRefs(op, setID)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if !s.IsLoaded(ref) {
			continue
		}
		if err := s.Unload(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

// IsLoaded reports whether an instance exists for ref.
func (s *Service) IsLoaded(ref Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.instances[ref]
	return ok
}

// IsVisible reports whether the instance for ref is open.
func (s *Service) IsVisible(ref Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visible[ref]
	return ok
}

// Get returns the instance for ref, if loaded.
func (s *Service) Get(ref Ref) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[ref]
	return inst, ok
}

// Loaded returns all loaded instances, ordered by ref for determinism.
func (s *Service) Loaded() []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedInstances(s.instances)
}

// Visible returns all open instances, ordered by ref for determinism.
func (s *Service) Visible() []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedInstances(s.visible)
}

// Layers returns the numbers of all layers created so far, ascending.
func (s *Service) Layers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	numbers := make([]int, 0, len(s.layers))
	for n := range s.layers {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

func sortedInstances(m map[Ref]*Instance) []*Instance {
	out := make([]*Instance, 0, len(m))
	for _, inst := range m {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ref.String() < out[j].ref.String()
	})
	return out
}

// Dispose tears the service down: closes all visible instances, unloads
// all loaded instances, clears every registry, and releases the layer
// containers. Per-instance failures are logged and teardown continues.
// Dispose is idempotent; the second call is a no-op.
func (s *Service) Dispose(ctx context.Context) {
	const op = "scene.Dispose"

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	visibleRefs := make([]Ref, 0, len(s.visible))
	for ref := range s.visible {
		visibleRefs = append(visibleRefs, ref)
	}
	s.mu.Unlock()

	for _, ref := range visibleRefs {
		if err := s.Close(ref, false); err != nil {
			serr := errors.Wrap(op, errors.KindTeardown, err)
			serr.PresenterType = ref.Type
			errors.Report(serr)
		}
	}

	s.mu.Lock()
	loadedRefs := make([]Ref, 0, len(s.instances))
	for ref := range s.instances {
		loadedRefs = append(loadedRefs, ref)
	}
	s.mu.Unlock()

	for _, ref := range loadedRefs {
		if err := s.Unload(ctx, ref); err != nil {
			serr := errors.Wrap(op, errors.KindTeardown, err)
			serr.PresenterType = ref.Type
			errors.Report(serr)
		}
	}

	s.mu.Lock()
	for _, layer := range s.layers {
		layer.container.Release()
	}
	s.layers = make(map[int]*Layer)
	s.instances = make(map[Ref]*Instance)
	s.visible = make(map[Ref]*Instance)
	s.descriptors = make(map[string]Descriptor)
	s.sets = make(map[string]Set)
	s.mu.Unlock()
}
