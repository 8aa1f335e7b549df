package events

import "sync"

// Event is a change notification emitted after a successful mutation, keyed
// by entity type and id so UI views can decide what to reload.
type Event struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Bus is an in-process publish/subscribe fanout. Delivery contract: at least
// once per live subscriber, no ordering guarantee across events, so consumers
// must treat a redundant notification as a no-op reload trigger.
type Bus struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// subscriber pairs the delivery channel with a done signal so a pending
// handoff can be abandoned when the consumer cancels mid-send.
type subscriber struct {
	ch      chan Event
	done    chan struct{}
	senders sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{subs: make(map[*subscriber]struct{})}
}

// Subscribe registers a consumer. The returned cancel func must be called
// when the consumer goes away; the channel is closed by it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, 64), done: make(chan struct{})}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[s]; !ok {
			b.mu.Unlock()
			return
		}
		delete(b.subs, s)
		b.mu.Unlock()
		// Unblock pending handoffs, wait them out, then close. After the
		// delete no new sender can start, so the close is safe.
		close(s.done)
		s.senders.Wait()
		close(s.ch)
	}
	return s.ch, cancel
}

// Publish fans the event out to every subscriber. A slow subscriber gets its
// event handed off to a goroutine rather than dropped, which is where the
// ordering guarantee is given up; a handoff racing that subscriber's cancel
// is abandoned instead.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			s.senders.Add(1)
			go func(s *subscriber) {
				defer s.senders.Done()
				select {
				case s.ch <- e:
				case <-s.done:
				}
			}(s)
		}
	}
}
