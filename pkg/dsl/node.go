package dsl

import "github.com/aretw0/arbor/pkg/domain"

// NodeBuilder provides a fluent API for configuring a component.
type NodeBuilder struct {
	node     domain.Component
	children []*NodeBuilder
	parent   *NodeBuilder
	builder  *Builder
}

// Child appends a child component and returns its builder.
func (n *NodeBuilder) Child(id, typ string) *NodeBuilder {
	child := &NodeBuilder{
		node:    domain.Component{ID: id, Type: typ},
		parent:  n,
		builder: n.builder,
	}
	n.children = append(n.children, child)
	return child
}

// Prop sets one entry of the component props.
func (n *NodeBuilder) Prop(key string, value any) *NodeBuilder {
	if n.node.Props == nil {
		n.node.Props = make(map[string]any)
	}
	n.node.Props[key] = value
	return n
}

// Slot places the component in a named slot of its parent (a tab index for tabbed containers).
func (n *NodeBuilder) Slot(key string) *NodeBuilder {
	n.node.SlotKey = key
	return n
}

// Up returns the parent builder. On a top-level component it returns the component itself.
func (n *NodeBuilder) Up() *NodeBuilder {
	if n.parent == nil {
		return n
	}
	return n.parent
}

// End returns to the tree builder.
func (n *NodeBuilder) End() *Builder {
	return n.builder
}

func (n *NodeBuilder) build() domain.Component {
	c := n.node
	if len(n.children) > 0 || n.builder.isContainer(c.Type) {
		c.Children = make([]domain.Component, 0, len(n.children))
	}
	for _, child := range n.children {
		c.Children = append(c.Children, child.build())
	}
	return c
}
