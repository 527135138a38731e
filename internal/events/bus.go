// Package events provides the in-process topic bus shared between the DI
// context, the websocket hub, and anything else that wants manifest-scoped
// pub/sub.
package events

import "sync"

// Message is one published event. Retained messages are replayed to late
// subscribers that ask for replay.
type Message struct {
	Topic   string                 `json:"topic"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Retain  bool                   `json:"retain,omitempty"`
}

// Handler consumes messages for one subscription.
type Handler func(Message)

// Bus is a topic-keyed publish/subscribe fan-out with optional per-topic
// retained messages.
type Bus struct {
	mu       sync.RWMutex
	subs     map[string]map[int]Handler
	allSubs  map[int]Handler
	retained map[string]Message
	next     int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:     make(map[string]map[int]Handler),
		allSubs:  make(map[int]Handler),
		retained: make(map[string]Message),
	}
}

// Publish delivers payload to every subscriber of topic. With retain set the
// message also replaces the topic's retained slot.
func (b *Bus) Publish(topic string, payload map[string]interface{}, retain bool) {
	msg := Message{Topic: topic, Payload: payload, Retain: retain}

	b.mu.Lock()
	if retain {
		b.retained[topic] = msg
	}
	handlers := make([]Handler, 0, len(b.subs[topic])+len(b.allSubs))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	for _, h := range b.allSubs {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
}

// Subscribe registers handler for topic. With replayLast set, the topic's
// retained message (if any) is delivered before Subscribe returns. The
// returned function cancels the subscription.
func (b *Bus) Subscribe(topic string, handler Handler, replayLast bool) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = handler
	retained, hasRetained := b.retained[topic]
	b.mu.Unlock()

	if replayLast && hasRetained {
		handler(retained)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[topic], id)
			b.mu.Unlock()
		})
	}
}

// SubscribeAll registers handler for every topic. With replayLast set, all
// retained messages are delivered before SubscribeAll returns, in unspecified
// order. The returned function cancels the subscription.
func (b *Bus) SubscribeAll(handler Handler, replayLast bool) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.allSubs[id] = handler
	var retained []Message
	if replayLast {
		retained = make([]Message, 0, len(b.retained))
		for _, msg := range b.retained {
			retained = append(retained, msg)
		}
	}
	b.mu.Unlock()

	for _, msg := range retained {
		handler(msg)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.allSubs, id)
			b.mu.Unlock()
		})
	}
}

// Retained returns the retained message for topic, if any.
func (b *Bus) Retained(topic string) (Message, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.retained[topic]
	return msg, ok
}
