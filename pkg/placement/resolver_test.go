package placement_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/placement"
)

func ptr[T any](v T) *T { return &v }

// sequence returns a deterministic id source: id-1, id-2, ...
func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type recorder struct {
	got []domain.Diagnostic
}

func (r *recorder) Notify(d domain.Diagnostic) { r.got = append(r.got, d) }

func leaf(id, typ string) domain.Component {
	return domain.Component{ID: id, Type: typ}
}

func container(id, typ string, children ...domain.Component) domain.Component {
	if children == nil {
		children = []domain.Component{}
	}
	return domain.Component{ID: id, Type: typ, Children: children}
}

// samplePage is:
//
//	s1 (Section)
//	  a (Text), b (Image), c (Button)
//	tabs (Tabs)
//	  t1 (Text)
//	s2 (Section)
func samplePage() []domain.Component {
	return []domain.Component{
		container("s1", "Section", leaf("a", "Text"), leaf("b", "Image"), leaf("c", "Button")),
		container("tabs", "Tabs", leaf("t1", "Text")),
		container("s2", "Section"),
	}
}

func newResolver(n placement.Notifier, opts ...placement.Option) *placement.Resolver {
	base := []placement.Option{placement.WithIDSource(sequence())}
	if n != nil {
		base = append(base, placement.WithNotifier(n))
	}
	return placement.New(append(base, opts...)...)
}

func TestResolve_Determinism(t *testing.T) {
	gestures := []domain.Gesture{
		{
			Drag:   domain.Drag{ID: "a", Origin: domain.OriginCanvas, SourceIndex: ptr(0), SourceParentID: "s1", DraggedType: "Text"},
			Target: domain.DropTarget{TargetID: "c"},
		},
		{
			Drag:     domain.Drag{ID: "palette-Text", Origin: domain.OriginPalette, DraggedType: "Text"},
			Target:   domain.DropTarget{TargetID: "t1"},
			TabHover: &domain.TabHover{ParentID: "tabs", TabIndex: 1},
		},
		{
			Drag: domain.Drag{ID: "lib", Origin: domain.OriginLibrary, Templates: []domain.Component{
				container("tpl", "Section", leaf("tpl-a", "Text")),
			}},
			Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
		},
		{
			Drag:   domain.Drag{ID: "x", Origin: domain.OriginPalette, DraggedType: "Text"},
			Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
		},
	}

	for i, g := range gestures {
		t.Run(fmt.Sprintf("gesture-%d", i), func(t *testing.T) {
			tree := samplePage()
			first := newResolver(nil).Resolve(g, tree)
			second := newResolver(nil).Resolve(g, tree)
			assert.Empty(t, cmp.Diff(first, second))
			assert.Empty(t, cmp.Diff(samplePage(), tree), "tree must not be modified")
		})
	}
}

func TestResolve_SameParentMoveDown(t *testing.T) {
	r := newResolver(nil)
	got := r.Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "a", Origin: domain.OriginCanvas, SourceIndex: ptr(0), SourceParentID: "s1", DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: "c", ParentID: ptr("s1"), TargetIndex: ptr(2)},
	}, samplePage())

	require.Len(t, got.Instructions, 1)
	assert.Equal(t, domain.Move{
		From: domain.Location{ParentID: "s1", Index: 0},
		To:   domain.Location{ParentID: "s1", Index: 1},
	}, got.Instructions[0])
}

func TestResolve_SameParentMoveUp(t *testing.T) {
	r := newResolver(nil)
	got := r.Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "c", Origin: domain.OriginCanvas, SourceIndex: ptr(2), SourceParentID: "s1", DraggedType: "Button"},
		Target: domain.DropTarget{TargetID: "b"},
	}, samplePage())

	require.Len(t, got.Instructions, 1)
	assert.Equal(t, domain.Move{
		From: domain.Location{ParentID: "s1", Index: 2},
		To:   domain.Location{ParentID: "s1", Index: 1},
	}, got.Instructions[0])
}

func TestResolve_ParentInference(t *testing.T) {
	r := newResolver(nil)
	got := r.Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: "b"},
	}, samplePage())

	require.Len(t, got.Instructions, 1)
	add, ok := got.Instructions[0].(domain.Add)
	require.True(t, ok, "expected add, got %T", got.Instructions[0])
	assert.Equal(t, "s1", add.ParentID)
	assert.Equal(t, 1, add.Index)
	assert.Equal(t, "Text", add.Component.Type)
	assert.Equal(t, "id-1", add.Component.ID)
	assert.Nil(t, add.Component.Children, "leaf types stay leaves")
}

func TestResolve_CrossParentMoveNoCorrection(t *testing.T) {
	r := newResolver(nil)
	got := r.Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "a", Origin: domain.OriginCanvas, SourceIndex: ptr(0), SourceParentID: "s1", DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: "container-s2"},
	}, samplePage())

	require.Len(t, got.Instructions, 1)
	assert.Equal(t, domain.Move{
		From: domain.Location{ParentID: "s1", Index: 0},
		To:   domain.Location{ParentID: "s2", Index: 0},
	}, got.Instructions[0])
}

func TestResolve_RootTypeRejection(t *testing.T) {
	rec := &recorder{}
	r := newResolver(rec, placement.WithContainerTypes())

	got := r.Resolve(domain.Gesture{
		Drag: domain.Drag{ID: "lib", Origin: domain.OriginLibrary, Templates: []domain.Component{
			leaf("tpl", "Text"),
		}},
		Target: domain.DropTarget{TargetID: "missing"},
	}, samplePage())

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, domain.DiagnosticCannotPlace, d.Code)
	assert.Equal(t, "Cannot place Text here", d.Message)
	assert.Empty(t, got.Added())
	assert.Len(t, rec.got, 1)
}

func TestResolve_TabSlotAssignment(t *testing.T) {
	r := newResolver(nil)
	got := r.Resolve(domain.Gesture{
		Drag:     domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Text"},
		Target:   domain.DropTarget{TargetID: "container-tabs"},
		TabHover: &domain.TabHover{ParentID: "tabs", TabIndex: 2},
	}, samplePage())

	added := got.Added()
	require.Len(t, added, 1)
	assert.Equal(t, "2", added[0].SlotKey)

	add := got.Instructions[0].(domain.Add)
	assert.Equal(t, domain.Location{ParentID: "tabs", Index: 1}, add.Location)
}

func TestResolve_TabHoverIgnored(t *testing.T) {
	tests := []struct {
		name  string
		hover *domain.TabHover
		tgt   domain.DropTarget
	}{
		{name: "no hover", hover: nil, tgt: domain.DropTarget{TargetID: "t1"}},
		{name: "other parent", hover: &domain.TabHover{ParentID: "s1", TabIndex: 1}, tgt: domain.DropTarget{TargetID: "t1"}},
		{name: "non tabbed parent", hover: &domain.TabHover{ParentID: "s1", TabIndex: 1}, tgt: domain.DropTarget{TargetID: "a"}},
		{name: "negative index", hover: &domain.TabHover{ParentID: "tabs", TabIndex: -1}, tgt: domain.DropTarget{TargetID: "t1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newResolver(nil).Resolve(domain.Gesture{
				Drag:     domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Text"},
				Target:   tt.tgt,
				TabHover: tt.hover,
			}, samplePage())
			added := got.Added()
			require.Len(t, added, 1)
			assert.Empty(t, added[0].SlotKey)
		})
	}
}

func TestResolve_MoveIntoTabCarriesSlot(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:     domain.Drag{ID: "a", Origin: domain.OriginCanvas, SourceIndex: ptr(0), SourceParentID: "s1"},
		Target:   domain.DropTarget{TargetID: "t1"},
		TabHover: &domain.TabHover{ParentID: "tabs", TabIndex: 3},
	}, samplePage())

	require.Len(t, got.Instructions, 1)
	assert.Equal(t, domain.Move{
		From:    domain.Location{ParentID: "s1", Index: 0},
		To:      domain.Location{ParentID: "tabs", Index: 0},
		SlotKey: "3",
	}, got.Instructions[0])
}

func TestResolve_SelfDrop(t *testing.T) {
	rec := &recorder{}
	tree := []domain.Component{container("p", "Section", leaf("a", "Text"), leaf("b", "Text"))}

	got := newResolver(rec).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "a", Origin: domain.OriginCanvas, SourceIndex: ptr(0), SourceParentID: "p", DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: "a"},
	}, tree)

	require.Len(t, got.Instructions, 1)
	move, ok := got.Instructions[0].(domain.Move)
	require.True(t, ok)
	assert.Equal(t, move.From, move.To)
	assert.True(t, move.IsNoop())
	assert.Empty(t, rec.got)
}

func TestResolve_BatchRejection(t *testing.T) {
	rec := &recorder{}
	r := newResolver(rec, placement.WithContainerTypes("Section"))

	got := r.Resolve(domain.Gesture{
		Drag: domain.Drag{ID: "lib", Origin: domain.OriginLibrary, Templates: []domain.Component{
			container("ok", "Section"),
			leaf("bad", "Text"),
		}},
		Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
	}, samplePage())

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, "Text", d.Type)
	assert.Empty(t, got.Added())
	require.Len(t, rec.got, 1)
	assert.Equal(t, d, rec.got[0])
}

func TestResolve_LibraryBatch(t *testing.T) {
	tpl := []domain.Component{
		container("tpl-1", "Section", leaf("tpl-1a", "Text")),
		container("tpl-2", "Grid"),
	}
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "lib", Origin: domain.OriginLibrary, Templates: tpl},
		Target: domain.DropTarget{TargetID: "tabs"},
	}, samplePage())

	require.Len(t, got.Instructions, 2)
	first := got.Instructions[0].(domain.Add)
	second := got.Instructions[1].(domain.Add)

	assert.Equal(t, domain.Location{ParentID: domain.RootID, Index: 1}, first.Location)
	assert.Equal(t, domain.Location{ParentID: domain.RootID, Index: 2}, second.Location)

	assert.Equal(t, "Section", first.Component.Type)
	assert.Equal(t, "id-1", first.Component.ID)
	require.Len(t, first.Component.Children, 1)
	assert.Equal(t, "id-2", first.Component.Children[0].ID)
	assert.Equal(t, "id-3", second.Component.ID)

	// templates are left untouched
	assert.Equal(t, "tpl-1", tpl[0].ID)
	assert.Equal(t, "tpl-1a", tpl[0].Children[0].ID)
}

func TestResolve_EmptyBatch(t *testing.T) {
	rec := &recorder{}
	got := newResolver(rec).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "lib", Origin: domain.OriginLibrary},
		Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
	}, samplePage())

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, domain.DiagnosticEmptyBatch, d.Code)
	assert.Len(t, rec.got, 1)
}

func TestResolve_UnresolvedTargetFallsBackToRootEnd(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Section"},
		Target: domain.DropTarget{TargetID: "nowhere"},
	}, samplePage())

	require.Len(t, got.Instructions, 1)
	add := got.Instructions[0].(domain.Add)
	assert.Equal(t, domain.Location{ParentID: domain.RootID, Index: 3}, add.Location)
	assert.NotNil(t, add.Component.Children, "container types start empty, not as leaves")
}

func TestResolve_ExplicitParentMissingFallsBackToRootEnd(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Section"},
		Target: domain.DropTarget{TargetID: "x", ParentID: ptr("ghost"), TargetIndex: ptr(0)},
	}, samplePage())

	add := got.Instructions[0].(domain.Add)
	assert.Equal(t, domain.Location{ParentID: domain.RootID, Index: 3}, add.Location)
}

func TestResolve_CanvasTargetAppends(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "s1", Origin: domain.OriginCanvas, SourceIndex: ptr(0)},
		Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
	}, samplePage())

	assert.Equal(t, domain.Move{
		From: domain.Location{Index: 0},
		To:   domain.Location{Index: 2},
	}, got.Instructions[0])
}

func TestResolve_RootMoveRejectsLeaf(t *testing.T) {
	rec := &recorder{}
	got := newResolver(rec).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "a", Origin: domain.OriginCanvas, SourceIndex: ptr(0), SourceParentID: "s1"},
		Target: domain.DropTarget{TargetID: "s2"},
	}, samplePage())

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, domain.DiagnosticCannotMove, d.Code)
	assert.Equal(t, "Text", d.Type, "type is read from the tree")
	assert.Len(t, rec.got, 1)
}

func TestResolve_Cycle(t *testing.T) {
	tree := []domain.Component{
		container("outer", "Section", container("inner", "Grid", leaf("x", "Text"))),
	}
	rec := &recorder{}
	got := newResolver(rec).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "outer", Origin: domain.OriginCanvas},
		Target: domain.DropTarget{TargetID: "x"},
	}, tree)

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, domain.DiagnosticCycle, d.Code)
	assert.Len(t, rec.got, 1)
}

func TestResolve_MissingSource(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "ghost", Origin: domain.OriginCanvas, DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: "a"},
	}, samplePage())

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, domain.DiagnosticMissingSource, d.Code)
}

func TestResolve_SourceLocatedFromTree(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "a", Origin: domain.OriginCanvas},
		Target: domain.DropTarget{TargetID: "container-s1"},
	}, samplePage())

	assert.Equal(t, domain.Move{
		From: domain.Location{ParentID: "s1", Index: 0},
		To:   domain.Location{ParentID: "s1", Index: 2},
	}, got.Instructions[0])
}

func TestResolve_UnknownOrigin(t *testing.T) {
	rec := &recorder{}
	got := newResolver(rec).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "q", Origin: "clipboard", DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
	}, samplePage())

	d, rejected := got.Rejected()
	require.True(t, rejected)
	assert.Equal(t, domain.DiagnosticUnknownOrigin, d.Code)
	assert.Len(t, rec.got, 1)
}

func TestResolve_ChildRules(t *testing.T) {
	rules := placement.ChildRules{"Tabs": {"Text", "Image"}}

	allowed := newResolver(nil, placement.WithChildRules(rules)).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Image"},
		Target: domain.DropTarget{TargetID: "t1"},
	}, samplePage())
	assert.Len(t, allowed.Added(), 1)

	rec := &recorder{}
	denied := newResolver(rec, placement.WithChildRules(rules)).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Button"},
		Target: domain.DropTarget{TargetID: "t1"},
	}, samplePage())
	_, rejected := denied.Rejected()
	assert.True(t, rejected)
	assert.Len(t, rec.got, 1)

	// parents absent from the table accept anything
	free := newResolver(nil, placement.WithChildRules(rules)).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Button"},
		Target: domain.DropTarget{TargetID: "a"},
	}, samplePage())
	assert.Len(t, free.Added(), 1)
}

func TestResolve_DropIntoLeafRejected(t *testing.T) {
	got := newResolver(nil).Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: "container-a"},
	}, samplePage())

	_, rejected := got.Rejected()
	assert.True(t, rejected)
}

func TestResolve_LeafTypeWithEmptyChildrenRejected(t *testing.T) {
	// a Text node that carries an empty children list is still a leaf
	tree := []domain.Component{
		container("s1", "Section", container("x", "Text")),
	}
	moveTree := append(domain.CloneTree(tree), container("s2", "Section", leaf("img", "Image")))

	tests := []struct {
		name    string
		gesture domain.Gesture
		tree    []domain.Component
		code    domain.DiagnosticCode
	}{
		{
			name: "palette onto container target",
			gesture: domain.Gesture{
				Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Image"},
				Target: domain.DropTarget{TargetID: domain.ContainerTargetPrefix + "x"},
			},
			tree: tree,
			code: domain.DiagnosticCannotPlace,
		},
		{
			name: "palette with explicit parent",
			gesture: domain.Gesture{
				Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Image"},
				Target: domain.DropTarget{TargetID: "x", ParentID: ptr("x"), TargetIndex: ptr(0)},
			},
			tree: tree,
			code: domain.DiagnosticCannotPlace,
		},
		{
			name: "canvas move into it",
			gesture: domain.Gesture{
				Drag:   domain.Drag{ID: "img", Origin: domain.OriginCanvas},
				Target: domain.DropTarget{TargetID: domain.ContainerTargetPrefix + "x"},
			},
			tree: moveTree,
			code: domain.DiagnosticCannotMove,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			got := newResolver(rec).Resolve(tt.gesture, tt.tree)

			d, rejected := got.Rejected()
			require.True(t, rejected, "got %s", got.Kind())
			assert.Equal(t, tt.code, d.Code)
			assert.Len(t, rec.got, 1)
		})
	}
}

func TestResolve_PaletteDefaults(t *testing.T) {
	defaults := map[string]map[string]any{
		"Tabs": {"tabs": []any{"Tab 1", "Tab 2"}, "mode": "tabs"},
	}
	r := newResolver(nil, placement.WithDefaults(defaults))

	got := r.Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "p", Origin: domain.OriginPalette, DraggedType: "Tabs"},
		Target: domain.DropTarget{TargetID: domain.CanvasTargetID},
	}, samplePage())

	added := got.Added()
	require.Len(t, added, 1)
	assert.Equal(t, "tabs", added[0].Props["mode"])

	added[0].Props["mode"] = "accordion"
	assert.Equal(t, "tabs", defaults["Tabs"]["mode"], "defaults are copied")
}

func TestResolve_NeverPanics(t *testing.T) {
	gestures := []domain.Gesture{
		{},
		{Drag: domain.Drag{Origin: domain.OriginCanvas}},
		{Drag: domain.Drag{Origin: domain.OriginCanvas, SourceIndex: ptr(-4)}, Target: domain.DropTarget{TargetID: "a"}},
		{Drag: domain.Drag{Origin: domain.OriginPalette}, Target: domain.DropTarget{ParentID: ptr("")}},
		{Drag: domain.Drag{Origin: domain.OriginLibrary, Templates: []domain.Component{{}}}},
		{Drag: domain.Drag{Origin: domain.OriginPalette, DraggedType: "Text"}, Target: domain.DropTarget{TargetID: "a", TargetIndex: ptr(-1)}},
	}
	r := newResolver(nil)
	for i, g := range gestures {
		assert.NotPanics(t, func() {
			p := r.Resolve(g, samplePage())
			assert.NotEmpty(t, p.Instructions, "gesture %d", i)
		})
		assert.NotPanics(t, func() {
			r.Resolve(g, nil)
		})
	}
}
