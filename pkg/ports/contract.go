package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/domain"
)

func contractTree() []domain.Component {
	return []domain.Component{
		{
			ID:   "hero",
			Type: domain.TypeSection,
			Children: []domain.Component{
				{ID: "title", Type: "Text", Props: map[string]any{"name": "Welcome"}},
				{ID: "tabs", Type: domain.TypeTabs, Children: []domain.Component{
					{ID: "tab-body", Type: "Text", SlotKey: "1"},
				}},
			},
		},
		{ID: "empty", Type: domain.TypeSection, Children: []domain.Component{}},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	pageID := "contract-test-page-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a document with some history
		doc := domain.NewDocument(pageID, contractTree())
		doc.History.Past = append(doc.History.Past, []domain.Component{})
		doc.Revision = 3

		// 2. Save
		err := store.Save(ctx, pageID, doc)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, pageID, loaded.ID)
		assert.Equal(t, 3, loaded.Revision)
		assert.Len(t, loaded.History.Past, 1)

		tree := loaded.Components()
		require.Len(t, tree, 2)
		assert.Equal(t, "Welcome", tree[0].Children[0].Props["name"])
		assert.Equal(t, "1", tree[0].Children[1].Children[0].SlotKey)
		assert.Nil(t, tree[0].Children[0].Children, "leaves stay leaves")
		assert.NotNil(t, tree[1].Children, "empty containers stay containers")
		assert.True(t, tree[1].IsContainer())
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err)
		loaded.History.Present[0].ID = "mutated"

		again, err := store.Load(ctx, pageID)
		require.NoError(t, err)
		assert.Equal(t, "hero", again.History.Present[0].ID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+pageID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		err := store.Save(ctx, pageID, domain.NewDocument(pageID, contractTree()))
		require.NoError(t, err)

		// Delete
		err = store.Delete(ctx, pageID)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, pageID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")

		// Deleting twice is fine
		assert.NoError(t, store.Delete(ctx, pageID))
	})

	t.Run("List", func(t *testing.T) {
		// Setup: Create 2 pages
		id1 := pageID + "-1"
		id2 := pageID + "-2"
		_ = store.Save(ctx, id1, domain.NewDocument(id1, nil))
		_ = store.Save(ctx, id2, domain.NewDocument(id2, nil))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		// List
		pages, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, pages, id1)
		assert.Contains(t, pages, id2)
	})
}
