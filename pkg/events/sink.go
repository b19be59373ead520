package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

const TopicReplay = "replay"

// EventSink is a destination for events.
type EventSink interface {
	PublishEvent(event Event) error
}

// WatermillSink serializes events to JSON and publishes them on a topic. Each
// message carries a sequence_number metadata entry in publishing order.
type WatermillSink struct {
	publisher      message.Publisher
	topic          string
	mu             sync.Mutex
	sequenceNumber uint64
}

func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

func (w *WatermillSink) PublishEvent(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", w.sequenceNumber))
	w.sequenceNumber++

	if err := w.publisher.Publish(w.topic, msg); err != nil {
		log.Error().Err(err).Str("topic", w.topic).Msg("Failed to publish event to watermill")
		return err
	}
	log.Trace().Str("topic", w.topic).Str("event_type", string(event.Type())).Msg("Published event to watermill")
	return nil
}

var _ EventSink = (*WatermillSink)(nil)

// CollectingSink keeps every event in memory. It is meant for tests that
// assert on published events.
type CollectingSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *CollectingSink) PublishEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *CollectingSink) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *CollectingSink) Types() []EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	ret := make([]EventType, 0, len(c.events))
	for _, e := range c.events {
		ret = append(ret, e.Type())
	}
	return ret
}

var _ EventSink = (*CollectingSink)(nil)
