package dsl

import (
	"slices"

	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	roots          []*NodeBuilder
	containerTypes []string
}

// New creates a tree builder. Types listed in containerTypes (default:
// domain.DefaultContainerTypes) are built with an empty children list.
func New(containerTypes ...string) *Builder {
	if len(containerTypes) == 0 {
		containerTypes = domain.DefaultContainerTypes
	}
	return &Builder{containerTypes: containerTypes}
}

// Add appends a top-level component.
func (b *Builder) Add(id, typ string) *NodeBuilder {
	nb := &NodeBuilder{
		node:    domain.Component{ID: id, Type: typ},
		builder: b,
	}
	b.roots = append(b.roots, nb)
	return nb
}

// Build assembles and validates the tree.
func (b *Builder) Build() ([]domain.Component, error) {
	tree := make([]domain.Component, 0, len(b.roots))
	for _, nb := range b.roots {
		tree = append(tree, nb.build())
	}
	if err := domain.ValidateTree(tree, b.containerTypes); err != nil {
		return nil, err
	}
	return tree, nil
}

// MustBuild is Build for fixtures known to be valid. It panics on error.
func (b *Builder) MustBuild() []domain.Component {
	tree, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tree
}

// Document builds the tree and wraps it in a fresh page document.
func (b *Builder) Document(pageID string) (*domain.Document, error) {
	tree, err := b.Build()
	if err != nil {
		return nil, err
	}
	return domain.NewDocument(pageID, tree), nil
}

func (b *Builder) isContainer(typ string) bool {
	return slices.Contains(b.containerTypes, typ)
}
