/*
Package dsl provides a fluent builder for page component trees.

It is a type-checked alternative to hand-written JSON fixtures, handy for seeding
pages, examples and tests.

Example usage:

	tree, err := dsl.New().
		Add("hero", domain.TypeSection).
			Child("title", "Text").Prop("name", "Welcome").Up().
			Child("tabs", domain.TypeTabs).Prop("tabs", []any{"One", "Two"}).
				Child("first", "Text").Slot("0").Up().
			Up().
		End().
		Add("footer", domain.TypeSection).End().
		Build()

Build validates the result with domain.ValidateTree, so duplicate ids and leaves
with children are reported instead of being silently stored.
*/
package dsl
