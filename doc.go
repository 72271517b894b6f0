/*
Package arbor resolves drag-and-drop gestures on a page builder canvas into
deterministic tree edits, and keeps the undoable history of every page.

A page is a tree of components. Container types (Section, Tabs, TabsAccordion by
default) own ordered children; everything else is a leaf. Only container types may
sit at the page root.

# Concept

A drop gesture pairs a Drag (what is dragged and where it comes from) with a
DropTarget (what it was released over). The resolver turns the gesture into a
Placement: a list of instructions that is either

  - one Move, for a component dragged on the canvas,
  - one Add, for a new component dragged from the palette,
  - one Add per template, for a saved block dragged from the library,
  - or a single None carrying a Diagnostic when the drop is not allowed.

Resolution never modifies the tree. Applying a Placement is a separate step that
records one entry in the page history, so undoing a library drop removes the whole
batch at once.

# Usage

	editor, err := arbor.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_, err = editor.Open(ctx, "home", []domain.Component{
		{ID: "hero", Type: domain.TypeSection, Children: []domain.Component{}},
	})
	if err != nil {
		log.Fatal(err)
	}

	placement, doc, err := editor.Drop(ctx, "home", domain.Gesture{
		Drag:   domain.Drag{ID: "palette-text", Origin: domain.OriginPalette, DraggedType: "Text"},
		Target: domain.DropTarget{TargetID: domain.ContainerTargetPrefix + "hero"},
	})

# Persistence

Pages are stored through the ports.DocumentStore interface. The memory store is the
default; file and Redis stores live under pkg/adapters. Editors sharing a Redis store
can coordinate with a distributed locker (WithLocker).

# Observability

Lifecycle hooks (WithLifecycleHooks) receive an event for every resolved, rejected
and applied drop. The observability package turns them into structured logs and
Prometheus metrics.
*/
package arbor
