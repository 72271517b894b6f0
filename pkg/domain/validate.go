package domain

import (
	"fmt"
	"strings"
)

// ValidateTree checks the structural invariants of a component tree:
// every component has an id and a type, ids are unique across the tree, and
// only container types own children (skipped when containerTypes is empty).
func ValidateTree(tree []Component, containerTypes []string) error {
	containers := make(map[string]bool, len(containerTypes))
	for _, t := range containerTypes {
		containers[t] = true
	}

	seen := make(map[string]bool)
	var issues []string

	Walk(tree, func(c Component, parentID string, depth int) bool {
		where := c.ID
		if where == "" {
			where = fmt.Sprintf("child of %q at depth %d", parentID, depth)
		}
		if c.ID == "" {
			issues = append(issues, fmt.Sprintf("component (%s) has no id", where))
		} else if seen[c.ID] {
			issues = append(issues, fmt.Sprintf("duplicate id '%s'", c.ID))
		}
		seen[c.ID] = true

		if c.Type == "" {
			issues = append(issues, fmt.Sprintf("component '%s' has no type", where))
		}
		if len(containers) > 0 && len(c.Children) > 0 && !containers[c.Type] {
			issues = append(issues, fmt.Sprintf("component '%s' cannot have children; only containers may own children", c.Type))
		}
		return true
	})

	if len(issues) > 0 {
		return fmt.Errorf("%w: found %d errors:\n- %s", ErrInvalidTree, len(issues), strings.Join(issues, "\n- "))
	}
	return nil
}
