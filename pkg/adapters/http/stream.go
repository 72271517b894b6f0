package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// streamBuffer is the number of pending diffs kept per subscriber.
const streamBuffer = 10

// StreamManager fans out page diffs to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // PageID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a subscriber for pageID. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (sm *StreamManager) Subscribe(pageID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if _, ok := sm.subscribers[pageID]; !ok {
		sm.subscribers[pageID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[pageID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[pageID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, pageID)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of active subscribers of pageID.
func (sm *StreamManager) Subscribers(pageID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[pageID])
}

// Broadcast sends msg to every subscriber of pageID without blocking.
func (sm *StreamManager) Broadcast(pageID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[pageID]
	if !ok {
		return
	}
	sm.logger.Debug("broadcasting diff", "page_id", pageID, "subscribers", len(subs), "payload_size", len(msg))
	for ch := range subs {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "page_id", pageID)
		}
	}
}

// Publish computes the diff between two revisions of a page and broadcasts it.
// Its signature matches arbor.ChangeListener.
func (sm *StreamManager) Publish(_ context.Context, before, after *domain.Document) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("failed to encode diff", "page_id", after.ID, "err", err)
		return
	}
	sm.Broadcast(after.ID, string(data))
}
