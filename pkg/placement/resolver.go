package placement

import (
	"log/slog"
	"slices"
	"strconv"

	"github.com/google/uuid"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// Notifier receives the diagnostic of a rejected drop.
// It is called exactly once per None instruction.
type Notifier interface {
	Notify(d domain.Diagnostic)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(d domain.Diagnostic)

// Notify implements Notifier.
func (f NotifierFunc) Notify(d domain.Diagnostic) { f(d) }

// ChildRules restricts which component types a container type accepts.
// A parent type absent from the table accepts any child.
type ChildRules map[string][]string

// Allows reports whether childType may be dropped inside a parent of parentType.
func (r ChildRules) Allows(parentType, childType string) bool {
	allowed, ok := r[parentType]
	if !ok {
		return true
	}
	return slices.Contains(allowed, childType)
}

// Resolver computes where a dragged item lands.
// It is stateless between calls and safe for concurrent use once built.
type Resolver struct {
	containers map[string]bool
	tabbed     map[string]bool
	rules      ChildRules
	defaults   map[string]map[string]any
	newID      func() string
	notifier   Notifier
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithContainerTypes sets the types that may own children. The same list is the
// allowlist of types accepted at the page root.
func WithContainerTypes(types ...string) Option {
	return func(r *Resolver) {
		r.containers = toSet(types)
	}
}

// WithTabbedTypes sets the container types whose slots are addressed by tab index.
func WithTabbedTypes(types ...string) Option {
	return func(r *Resolver) {
		r.tabbed = toSet(types)
	}
}

// WithChildRules restricts the children accepted by non-root containers.
func WithChildRules(rules ChildRules) Option {
	return func(r *Resolver) {
		r.rules = rules
	}
}

// WithDefaults sets the props given to new palette components, keyed by type.
func WithDefaults(defaults map[string]map[string]any) Option {
	return func(r *Resolver) {
		r.defaults = defaults
	}
}

// WithIDSource replaces the generator used for new and cloned component ids.
func WithIDSource(fn func() string) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithNotifier sets the sink that receives rejection diagnostics.
func WithNotifier(n Notifier) Option {
	return func(r *Resolver) {
		r.notifier = n
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Resolver. Without options it uses the default container and
// tabbed types and random UUIDs for new components.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		containers: toSet(domain.DefaultContainerTypes),
		tabbed:     toSet(domain.DefaultTabbedTypes),
		newID:      uuid.NewString,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsContainer reports whether components of type t may own children.
func (r *Resolver) IsContainer(t string) bool {
	return r.containers[t]
}

// ContainerTypes returns the configured container types in lexical order.
func (r *Resolver) ContainerTypes() []string {
	out := make([]string, 0, len(r.containers))
	for t := range r.containers {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// destination is a resolved drop point.
type destination struct {
	parentID   string
	parentType string
	index      int
}

// Resolve computes the placement for one drop gesture. The tree is never modified.
func (r *Resolver) Resolve(g domain.Gesture, tree []domain.Component) domain.Placement {
	drag := g.Drag

	switch drag.Origin {
	case domain.OriginCanvas:
		return r.resolveMove(g, tree)
	case domain.OriginPalette:
		return r.resolvePalette(g, tree)
	case domain.OriginLibrary:
		return r.resolveLibrary(g, tree)
	}
	return r.reject(domain.NewDiagnostic(domain.DiagnosticUnknownOrigin, drag.DraggedType))
}

func (r *Resolver) resolveMove(g domain.Gesture, tree []domain.Component) domain.Placement {
	drag := g.Drag

	// 1. Locate the source
	from, ok := r.source(drag, tree)
	if !ok {
		return r.reject(domain.NewDiagnostic(domain.DiagnosticMissingSource, drag.DraggedType))
	}

	// 2. Dropping onto itself never changes the tree
	if g.Target.TargetID == drag.ID {
		return domain.Single(domain.Move{From: from, To: from})
	}

	node, inTree := domain.Find(tree, drag.ID)
	typ := drag.DraggedType
	if inTree {
		typ = node.Type
	}

	// 3. Resolve parent and raw index
	dest, ok := r.destination(g.Target, tree)
	if !ok || !r.accepts(dest, typ) {
		return r.reject(domain.NewDiagnostic(domain.DiagnosticCannotMove, typ))
	}
	if inTree && dest.parentID != domain.RootID && domain.Contains(node, dest.parentID) {
		return r.reject(domain.NewDiagnostic(domain.DiagnosticCycle, typ))
	}

	// 4. Removing the source first shifts later siblings down by one
	to := domain.Location{ParentID: dest.parentID, Index: dest.index}
	if from.ParentID == dest.parentID && from.Index < dest.index {
		to.Index--
	}

	move := domain.Move{From: from, To: to, SlotKey: r.slotKey(dest, g.TabHover)}
	r.logger.Debug("resolved move", "id", drag.ID, "from", from, "to", to, "slot", move.SlotKey)
	return domain.Single(move)
}

func (r *Resolver) resolvePalette(g domain.Gesture, tree []domain.Component) domain.Placement {
	typ := g.Drag.DraggedType

	dest, ok := r.destination(g.Target, tree)
	if !ok || typ == "" || !r.accepts(dest, typ) {
		return r.reject(domain.NewDiagnostic(domain.DiagnosticCannotPlace, typ))
	}

	c := domain.Component{
		ID:      r.newID(),
		Type:    typ,
		SlotKey: r.slotKey(dest, g.TabHover),
		Props:   cloneMap(r.defaults[typ]),
	}
	if r.containers[typ] {
		c.Children = []domain.Component{}
	}

	r.logger.Debug("resolved add", "type", typ, "parent", dest.parentID, "index", dest.index)
	return domain.Single(domain.Add{
		Location:  domain.Location{ParentID: dest.parentID, Index: dest.index},
		Component: c,
	})
}

func (r *Resolver) resolveLibrary(g domain.Gesture, tree []domain.Component) domain.Placement {
	templates := g.Drag.Templates
	if len(templates) == 0 {
		return r.reject(domain.NewDiagnostic(domain.DiagnosticEmptyBatch, ""))
	}

	dest, ok := r.destination(g.Target, tree)
	if !ok {
		return r.reject(domain.NewDiagnostic(domain.DiagnosticCannotPlace, templates[0].Type))
	}

	// Fail closed: one disallowed template rejects the whole batch.
	for _, t := range templates {
		if t.Type == "" || !r.accepts(dest, t.Type) {
			return r.reject(domain.NewDiagnostic(domain.DiagnosticCannotPlace, t.Type))
		}
	}

	slot := r.slotKey(dest, g.TabHover)
	out := make([]domain.Instruction, 0, len(templates))
	for i, t := range templates {
		c := r.cloneFresh(t)
		if slot != "" {
			c.SlotKey = slot
		}
		out = append(out, domain.Add{
			Location:  domain.Location{ParentID: dest.parentID, Index: dest.index + i},
			Component: c,
		})
	}

	r.logger.Debug("resolved batch", "count", len(out), "parent", dest.parentID, "index", dest.index)
	return domain.Placement{Instructions: out}
}

// source returns where a canvas drag started. The descriptor wins over the tree.
func (r *Resolver) source(drag domain.Drag, tree []domain.Component) (domain.Location, bool) {
	if drag.SourceIndex != nil && *drag.SourceIndex >= 0 {
		return domain.Location{ParentID: drag.SourceParentID, Index: *drag.SourceIndex}, true
	}
	return domain.Locate(tree, drag.ID)
}

// destination resolves the parent and raw index of a drop target.
// ok is false when an explicit parent exists but cannot own children.
func (r *Resolver) destination(t domain.DropTarget, tree []domain.Component) (destination, bool) {
	rootEnd := destination{parentID: domain.RootID, index: len(tree)}

	var parentID string
	switch {
	case t.TargetID == domain.CanvasTargetID:
		return rootEnd, true
	case t.ParentID != nil:
		parentID = *t.ParentID
	default:
		if id, isContainer := t.ContainerID(); isContainer {
			if c, found := domain.Find(tree, id); found {
				if !r.owns(c) {
					return destination{}, false
				}
				return destination{parentID: c.ID, parentType: c.Type, index: len(c.Children)}, true
			}
		}
		inferred, found := domain.FindParent(tree, t.TargetID)
		if !found {
			return rootEnd, true
		}
		parentID = inferred
	}

	dest := destination{parentID: parentID}
	children := tree
	if parentID != domain.RootID {
		parent, found := domain.Find(tree, parentID)
		if !found {
			return rootEnd, true
		}
		if !r.owns(parent) {
			return destination{}, false
		}
		dest.parentType = parent.Type
		children = parent.Children
	}

	switch {
	case t.TargetIndex != nil:
		dest.index = *t.TargetIndex
	default:
		if i := domain.IndexOf(children, t.TargetID); i >= 0 {
			dest.index = i
		} else {
			dest.index = len(children)
		}
	}
	return dest, true
}

// owns reports whether c may receive children: its type must be a container
// type and it must carry a children list.
func (r *Resolver) owns(c domain.Component) bool {
	return r.containers[c.Type] && c.IsContainer()
}

// accepts applies the root allowlist or the child rules of the destination parent.
func (r *Resolver) accepts(dest destination, typ string) bool {
	if dest.parentID == domain.RootID {
		return r.containers[typ]
	}
	return r.rules.Allows(dest.parentType, typ)
}

// slotKey returns the tab slot for a drop into a tabbed parent hovered on one of its tabs.
func (r *Resolver) slotKey(dest destination, hover *domain.TabHover) string {
	if hover == nil || hover.TabIndex < 0 {
		return ""
	}
	if dest.parentID == domain.RootID || hover.ParentID != dest.parentID || !r.tabbed[dest.parentType] {
		return ""
	}
	return strconv.Itoa(hover.TabIndex)
}

// cloneFresh deep copies a template, giving the copy and every descendant a new id.
func (r *Resolver) cloneFresh(t domain.Component) domain.Component {
	c := t.Clone()
	var renumber func(c *domain.Component)
	renumber = func(c *domain.Component) {
		c.ID = r.newID()
		for i := range c.Children {
			renumber(&c.Children[i])
		}
	}
	renumber(&c)
	if c.Children == nil && r.containers[c.Type] {
		c.Children = []domain.Component{}
	}
	return c
}

func (r *Resolver) reject(d domain.Diagnostic) domain.Placement {
	r.logger.Debug("drop rejected", "code", d.Code, "type", d.Type)
	if r.notifier != nil {
		r.notifier.Notify(d)
	}
	return domain.Reject(d)
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
