package dispatch

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zjrosen/conddispatch/internal/log"
	"github.com/zjrosen/conddispatch/internal/pubsub"
)

// Change describes a registry mutation published to subscribers.
type Change struct {
	Group       string
	CandidateID uuid.UUID
	Order       int
	Label       string
	Default     bool
	Version     uint64
}

type group struct {
	mu        sync.Mutex
	nextOrder int
	snap      atomic.Pointer[Snapshot]
}

// Registry holds every dispatch group. It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	groups       map[string]*group
	invalidators []Invalidator

	version atomic.Uint64
	events  *pubsub.Broker[Change]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]*group),
		events: pubsub.NewBroker[Change](),
	}
}

// AddInvalidator attaches an observer notified on every group mutation.
func (r *Registry) AddInvalidator(inv Invalidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidators = append(r.invalidators, inv)
}

// Subscribe returns a channel of registry changes, closed when ctx ends.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return r.events.Subscribe(ctx)
}

// Close releases event subscribers. The registry stays usable.
func (r *Registry) Close() {
	r.events.Close()
}

// Register appends a candidate to name, creating the group on first use.
// Registration always succeeds; duplicate predicates are resolved by order.
func (r *Registry) Register(name string, pred Predicate, impl Implementation, opts ...CandidateOption) *Candidate {
	c := &Candidate{Group: name, predicate: pred, impl: impl}
	for _, opt := range opts {
		opt(c)
	}
	r.add(name, c)
	return c
}

// RegisterDefault installs the candidate used when no predicate matches.
// An existing default for the group is replaced.
func (r *Registry) RegisterDefault(name string, impl Implementation, opts ...CandidateOption) *Candidate {
	c := &Candidate{Group: name, Default: true, predicate: Always(), impl: impl}
	for _, opt := range opts {
		opt(c)
	}
	if prev := r.Snapshot(name).DefaultCandidate(); prev != nil {
		log.Warn(log.CatRegistry, "Replacing default candidate", "group", name, "previous", prev.Name())
	}
	r.add(name, c)
	return c
}

func (r *Registry) add(name string, c *Candidate) {
	g := r.group(name)

	g.mu.Lock()
	c.ID = uuid.New()
	c.Order = g.nextOrder
	g.nextOrder++
	version := r.version.Add(1)
	g.snap.Store(g.snap.Load().with(c, version))
	r.invalidate(name)
	g.mu.Unlock()

	log.Debug(log.CatRegistry, "Registered candidate",
		"group", name, "order", c.Order, "label", c.Label, "default", c.Default, "version", version)
	r.events.Publish(pubsub.RegisteredEvent, Change{
		Group: name, CandidateID: c.ID, Order: c.Order, Label: c.Label, Default: c.Default, Version: version,
	})
}

// Unregister removes c from its group.
// Returns ErrCandidateNotFound if c is not currently registered.
func (r *Registry) Unregister(c *Candidate) error {
	if c == nil {
		return ErrCandidateNotFound
	}

	r.mu.RLock()
	g, ok := r.groups[c.Group]
	r.mu.RUnlock()
	if !ok {
		return ErrCandidateNotFound
	}

	g.mu.Lock()
	next, found := g.snap.Load().without(c)
	if !found {
		g.mu.Unlock()
		return ErrCandidateNotFound
	}
	version := r.version.Add(1)
	next.Version = version
	g.snap.Store(next)
	r.invalidate(c.Group)
	g.mu.Unlock()

	log.Debug(log.CatRegistry, "Unregistered candidate", "group", c.Group, "order", c.Order, "version", version)
	r.events.Publish(pubsub.UnregisteredEvent, Change{
		Group: c.Group, CandidateID: c.ID, Order: c.Order, Label: c.Label, Default: c.Default, Version: version,
	})
	return nil
}

// Reset drops every group. Attached invalidators are told about each one.
// Registrations racing with Reset may land in a dropped group; Reset is meant
// for test isolation and teardown.
func (r *Registry) Reset() {
	r.mu.Lock()
	old := r.groups
	r.groups = make(map[string]*group)
	invs := slices.Clone(r.invalidators)
	r.mu.Unlock()

	for name, g := range old {
		g.mu.Lock()
		g.snap.Store(&Snapshot{Group: name, Version: r.version.Add(1)})
		for _, inv := range invs {
			inv.InvalidateGroup(name)
		}
		g.mu.Unlock()
		r.events.Publish(pubsub.ResetEvent, Change{Group: name})
	}
	log.Debug(log.CatRegistry, "Registry reset", "groups", len(old))
}

// group returns the named group, creating it if needed.
func (r *Registry) group(name string) *group {
	r.mu.RLock()
	g, ok := r.groups[name]
	r.mu.RUnlock()
	if ok {
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok = r.groups[name]; ok {
		return g
	}
	g = &group{}
	g.snap.Store(&Snapshot{Group: name})
	r.groups[name] = g
	return g
}

// invalidate must be called with the group's lock held.
func (r *Registry) invalidate(name string) {
	r.mu.RLock()
	invs := r.invalidators
	r.mu.RUnlock()
	for _, inv := range invs {
		inv.InvalidateGroup(name)
	}
}

// Snapshot returns the current candidates of name. Unknown groups yield an
// empty snapshot with version zero.
func (r *Registry) Snapshot(name string) Snapshot {
	r.mu.RLock()
	g, ok := r.groups[name]
	r.mu.RUnlock()
	if !ok {
		return Snapshot{Group: name}
	}
	return *g.snap.Load()
}

// Groups returns the names of all groups, sorted.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.groups))
}

// Candidates returns the candidates of name in resolution order.
func (r *Registry) Candidates(name string) []*Candidate {
	return r.Snapshot(name).Candidates()
}

// Resolve picks the first candidate of name whose predicate accepts args.
func (r *Registry) Resolve(name string, args Args) (*Candidate, error) {
	c, err := r.Snapshot(name).Resolve(args)
	if err != nil {
		log.Debug(log.CatResolve, "Resolution failed", "group", name, "error", err)
		return nil, err
	}
	log.Debug(log.CatResolve, "Resolved", "group", name, "candidate", c.Name())
	return c, nil
}

// Dispatch resolves the call and invokes the winning implementation. The
// implementation's result and error are returned as-is.
func (r *Registry) Dispatch(ctx context.Context, name string, args Args) (any, error) {
	c, err := r.Resolve(name, args)
	ReportResolution(ctx, err)
	if err != nil {
		return nil, err
	}
	return c.Invoke(ctx, args)
}
