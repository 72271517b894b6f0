package domain

// Well known component types.
const (
	// TypeTabs is a tab strip container; each tab is a slot addressed by its index.
	TypeTabs = "Tabs"
	// TypeTabsAccordion renders its slots either as tabs or as accordion panels.
	TypeTabsAccordion = "TabsAccordionContainer"
	// TypeSection is the default top-level container of a page.
	TypeSection = "Section"
)

// DefaultContainerTypes lists the component types that may own children.
var DefaultContainerTypes = []string{
	TypeSection,
	"Canvas",
	"MultiColumn",
	"StackFlex",
	"Grid",
	"CarouselContainer",
	TypeTabsAccordion,
	TypeTabs,
	"Dataset",
	"Repeater",
	"Bind",
}

// DefaultTabbedTypes lists the container types whose slots are addressed by tab index.
var DefaultTabbedTypes = []string{TypeTabs, TypeTabsAccordion}

// Component represents a node of the page component tree.
//
// A nil Children slice marks a leaf. An empty, non-nil slice marks a container
// without children; the distinction survives JSON round trips.
type Component struct {
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	// Children is rendered in order.
	Children []Component `json:"children" yaml:"children" mapstructure:"children"`

	// SlotKey places the component into a named slot (e.g. a tab) of its parent.
	SlotKey string `json:"slotKey,omitempty" yaml:"slotKey,omitempty" mapstructure:"slotKey"`

	// Props holds the free-form settings of the component (name, tabs, mode...).
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
}

// IsContainer reports whether the component can hold children.
func (c Component) IsContainer() bool {
	return c.Children != nil
}

// Clone returns a deep copy of the component and its subtree.
func (c Component) Clone() Component {
	out := c
	out.Props = cloneProps(c.Props)
	if c.Children != nil {
		out.Children = CloneTree(c.Children)
	}
	return out
}

func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
