package messages

import (
	"fmt"
	"strings"
)

// Default speaker prefixes for buffer-string rendering.
const (
	DefaultHumanPrefix = "Human"
	DefaultAIPrefix    = "AI"
)

// GetBufferString renders a message sequence as one "{prefix}: {content}"
// line per message, joined by newlines, in input order. Human and ai
// prefixes are configurable (empty selects the defaults); system, function
// and tool prefixes are fixed; chat messages use their embedded role
// verbatim. AI messages carrying tool calls render under the ai prefix with
// whatever content they have.
func GetBufferString(msgs []Message, humanPrefix, aiPrefix string) (string, error) {
	if humanPrefix == "" {
		humanPrefix = DefaultHumanPrefix
	}
	if aiPrefix == "" {
		aiPrefix = DefaultAIPrefix
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		var prefix string
		switch m.Type {
		case TypeHuman:
			prefix = humanPrefix
		case TypeAI:
			prefix = aiPrefix
		case TypeSystem:
			prefix = "System"
		case TypeFunction:
			prefix = "Function"
		case TypeTool:
			prefix = "Tool"
		case TypeChat, TypeGeneric:
			prefix = m.Role
		default:
			return "", unsupportedRolef("unsupported message type %q", m.Type)
		}
		line := fmt.Sprintf("%s: %s", prefix, m.Content.String())
		if m.Type == TypeAI {
			if fc, ok := functionCall(m); ok {
				line += fc
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// functionCall renders a legacy function_call payload appended to an ai line.
func functionCall(m Message) (string, bool) {
	fc, ok := m.AdditionalKwargs["function_call"]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", fc), true
}
