// Package claude adapts transcripts to the Anthropic Messages API and wraps the
// HTTP client with the replayer's settings.
package claude

import (
	"github.com/go-go-golems/replayer/pkg/claude/api"
	"github.com/go-go-golems/replayer/pkg/transcript"
)

// ToWireMessages maps the effective turns of t to API messages, in order.
// Human turns become user messages, every other sender becomes assistant.
func ToWireMessages(t *transcript.Transcript) []api.Message {
	turns := transcript.EffectiveTurns(t)
	ret := make([]api.Message, 0, len(turns))
	for _, turn := range turns {
		role := api.RoleAssistant
		if turn.Sender == transcript.SenderHuman {
			role = api.RoleUser
		}
		ret = append(ret, api.Message{
			Role:    role,
			Content: transcript.ExtractText(turn),
		})
	}
	return ret
}
