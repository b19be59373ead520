package events

import (
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"gopkg.in/yaml.v3"
)

// StepPrinterFunc returns a handler printing a one-line summary per event.
func StepPrinterFunc(name string, w io.Writer) func(msg *message.Message) error {
	prefix := ""
	if name != "" {
		prefix = name + ": "
	}

	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}
		meta := e.Metadata()

		switch p_ := e.(type) {
		case *EventExchangeCompleted:
			_, err = fmt.Fprintf(w, "%s[exchange %s] %d turns, persisted=%t\n", prefix, meta.Model, p_.Turns, p_.Persisted)
			if err != nil {
				return err
			}
			if meta.Usage != nil {
				v_, err := yaml.Marshal(meta.Usage)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "%s", v_); err != nil {
					return err
				}
			}

		case *EventTurnEdited:
			_, err = fmt.Fprintf(w, "%s[edit] turn %d, persisted=%t\n", prefix, p_.Index, p_.Persisted)

		case *EventSessionSaved:
			_, err = fmt.Fprintf(w, "%s[saved] %s (%d turns)\n", prefix, meta.Session, p_.Turns)

		case *EventAutosaveFailed:
			_, err = fmt.Fprintf(w, "%s[autosave failed] %s: %s\n", prefix, meta.Session, p_.ErrorString)
		}

		return err
	}
}
