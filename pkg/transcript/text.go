package transcript

import "strings"

// ExtractText concatenates the text blocks of a turn in order. Turns without
// text blocks, including malformed ones, yield the empty string.
func ExtractText(turn *Turn) string {
	if turn == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range turn.Blocks {
		if b.IsText() {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// IsEffective reports whether the turn carries non-whitespace text.
func IsEffective(turn *Turn) bool {
	return strings.TrimSpace(ExtractText(turn)) != ""
}

// EffectiveTurns returns the turns that count for display and conversion,
// in transcript order.
func EffectiveTurns(t *Transcript) []*Turn {
	if t == nil {
		return nil
	}
	ret := make([]*Turn, 0, len(t.Turns))
	for _, turn := range t.Turns {
		if IsEffective(turn) {
			ret = append(ret, turn)
		}
	}
	return ret
}

// FirstTextBlock returns the index of the first text block of turn.
func FirstTextBlock(turn *Turn) (int, bool) {
	if turn == nil {
		return -1, false
	}
	for i, b := range turn.Blocks {
		if b.IsText() {
			return i, true
		}
	}
	return -1, false
}
