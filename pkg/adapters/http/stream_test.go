package http

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/arbor/pkg/domain"
)

func TestStreamManager_SubscribeBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("home")
	other, cancelOther := sm.Subscribe("other")
	defer cancelOther()

	assert.Equal(t, 1, sm.Subscribers("home"))
	sm.Broadcast("home", "hello")
	assert.Equal(t, "hello", <-ch)
	assert.Empty(t, other)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, sm.Subscribers("home"))
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("home")
	defer cancel()

	for i := 0; i < streamBuffer+5; i++ {
		sm.Broadcast("home", "msg")
	}
	assert.Len(t, ch, streamBuffer)
}

func TestStreamManager_Publish(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("home")
	defer cancel()

	before := domain.NewDocument("home", []domain.Component{{ID: "s1", Type: domain.TypeSection, Children: []domain.Component{}}})
	after := before.Snapshot()
	after.History.Present = append(after.History.Present, domain.Component{ID: "s2", Type: domain.TypeSection, Children: []domain.Component{}})
	after.Revision = 1

	// Unchanged documents are not broadcast
	sm.Publish(context.Background(), before, before.Snapshot())
	assert.Empty(t, ch)

	sm.Publish(context.Background(), before, after)
	require.Len(t, ch, 1)

	var diff domain.TreeDiff
	require.NoError(t, json.Unmarshal([]byte(<-ch), &diff))
	assert.Equal(t, domain.Location{Index: 1}, diff.Added["s2"])
	assert.Equal(t, 1, diff.Revision)
}

func TestWatched(t *testing.T) {
	msg := `{"page_id":"home","revision":1,"removed":["a"],"can_undo":true,"can_redo":false}`
	assert.True(t, watched(msg, nil))
	assert.True(t, watched(msg, []string{"removed"}))
	assert.False(t, watched(msg, []string{"added", "moved"}))
	assert.True(t, watched("not json", []string{"added"}))
}
