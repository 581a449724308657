package inbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/trade-trigger/internal/model/messaging"
)

var (
	ErrChannelRequired = errors.New("channel id is required")
	ErrAuthorRequired  = errors.New("author id is required")
	ErrContentRequired = errors.New("content is required")
	ErrChannelNotFound = errors.New("channel not found")
)

const subscriberBuffer = 16

// Service keeps received channel messages in memory and fans them out to watchers.
type Service struct {
	mu          sync.RWMutex
	messages    map[string][]messaging.Message
	subscribers map[string]map[chan messaging.Message]struct{}
}

// NewService bootstraps an empty inbox.
func NewService() *Service {
	return &Service{
		messages:    make(map[string][]messaging.Message),
		subscribers: make(map[string]map[chan messaging.Message]struct{}),
	}
}

// Save validates and appends a message, assigning its ID and timestamp.
func (s *Service) Save(_ context.Context, message messaging.Message) (messaging.Message, error) {
	switch {
	case message.ChannelID == "":
		return messaging.Message{}, ErrChannelRequired
	case message.AuthorID == "":
		return messaging.Message{}, ErrAuthorRequired
	case message.Content == "":
		return messaging.Message{}, ErrContentRequired
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.messages[message.ChannelID] = append(s.messages[message.ChannelID], message)
	for ch := range s.subscribers[message.ChannelID] {
		select {
		case ch <- message:
		default:
			// drop for slow watchers
		}
	}
	s.mu.Unlock()

	return message, nil
}

// List returns stored messages for the channel in arrival order.
func (s *Service) List(_ context.Context, channelID string) ([]messaging.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[channelID]
	if !ok {
		return nil, ErrChannelNotFound
	}

	copied := make([]messaging.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Subscribe registers a watcher for new messages on a channel. The returned
// cancel func must be called to release it.
func (s *Service) Subscribe(channelID string) (<-chan messaging.Message, func()) {
	ch := make(chan messaging.Message, subscriberBuffer)

	s.mu.Lock()
	if s.subscribers[channelID] == nil {
		s.subscribers[channelID] = make(map[chan messaging.Message]struct{})
	}
	s.subscribers[channelID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[channelID], ch)
			if len(s.subscribers[channelID]) == 0 {
				delete(s.subscribers, channelID)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
