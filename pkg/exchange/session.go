package exchange

import (
	"context"
	"time"

	"github.com/go-go-golems/replayer/pkg/events"
	"github.com/go-go-golems/replayer/pkg/sessions"
	"github.com/go-go-golems/replayer/pkg/settings"
	"github.com/go-go-golems/replayer/pkg/transcript"
	"github.com/rs/zerolog/log"
)

// Session is the live transcript being worked on. A non-empty Name means the
// transcript is associated with a saved session and changes are auto-saved
// under that name.
type Session struct {
	Transcript *transcript.Transcript
	Name       string
}

func NewSession(name string, t *transcript.Transcript) *Session {
	if t == nil {
		t = transcript.New()
	}
	return &Session{Transcript: t, Name: name}
}

type options struct {
	store     sessions.Store
	sinks     []events.EventSink
	model     string
	maxTokens int
	now       func() time.Time
}

type Option func(*options)

// WithStore enables auto-save for sessions that have a name.
func WithStore(store sessions.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

func WithEventSinks(sinks ...events.EventSink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sinks...)
	}
}

func WithDefaultModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *options) {
		if maxTokens > 0 {
			o.maxTokens = maxTokens
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts ...Option) *options {
	ret := &options{
		model:     settings.DefaultModel,
		maxTokens: settings.DefaultMaxTokens,
		now:       time.Now,
	}
	for _, o := range opts {
		o(ret)
	}
	return ret
}

// newMetadata stamps event metadata with the configured clock.
func (o *options) newMetadata(session string) events.EventMetadata {
	meta := events.NewEventMetadata(session)
	meta.Timestamp = o.now()
	return meta
}

// autoSave persists the session when it has a name. Failures are logged and
// published, never returned.
func (o *options) autoSave(ctx context.Context, sess *Session, meta events.EventMetadata) bool {
	if o.store == nil || sess.Name == "" {
		return false
	}
	if err := o.store.Save(ctx, sess.Name, sess.Transcript); err != nil {
		log.Warn().Err(err).Str("session", sess.Name).Msg("Auto-save failed")
		o.publish(ctx, events.NewAutosaveFailedEvent(meta, err))
		return false
	}
	log.Debug().Str("session", sess.Name).Int("turns", sess.Transcript.Len()).Msg("Session auto-saved")
	o.publish(ctx, events.NewSessionSavedEvent(meta, sess.Transcript.Len()))
	return true
}

func (o *options) publish(ctx context.Context, ev events.Event) {
	for _, sink := range o.sinks {
		if err := sink.PublishEvent(ev); err != nil {
			log.Warn().Err(err).Str("event_type", string(ev.Type())).Msg("Failed to publish event")
		}
	}
	events.PublishEventToContext(ctx, ev)
}
