package dialogue

import (
	"fmt"
	"strings"

	"fellowship-chat-be/pkg/llm"
)

const switchBannerPrefix = "You are now speaking to"

// Canned lines never fail and never reach the model.
const (
	identityClaimLine  = `%s narrows their eyes... "I have traveled with him for a long time and know him better than most know themselves. Do not mock him so."`
	outOfCharacterLine = `%s looks sternly: "I am not one for riddles of strange tongues. Speak plainly, or not at all."`
	pastQueryLine      = "I don't know what you talked about with %s."
	initializingLine   = "The character chain is still loading or not initialized."
	generationLine     = `%s falls silent for a long moment. "That is a mystery even Elrond might ponder for days. Ask me again, in a little while."`
)

func greetingLine(name, greeting string) string {
	return fmt.Sprintf("You find yourself before %s. %s", name, greeting)
}

func switchBanner(name string) string {
	return fmt.Sprintf("%s %s.", switchBannerPrefix, name)
}

func isSwitchBanner(content string) bool {
	return strings.HasPrefix(content, switchBannerPrefix)
}

// isCannedReply reports whether content was produced by the session manager
// for name rather than generated by the model.
func isCannedReply(name, content string) bool {
	switch content {
	case fmt.Sprintf(identityClaimLine, name),
		fmt.Sprintf(outOfCharacterLine, name),
		fmt.Sprintf(generationLine, name),
		initializingLine:
		return true
	}
	return isSwitchBanner(content) ||
		strings.HasPrefix(content, strings.TrimSuffix(pastQueryLine, "%s.")) ||
		strings.HasPrefix(content, greetingLine(name, ""))
}

// generatedTranscript copies history without canned replies or the user
// messages they answered, so only model turns reach the RAG memory.
func generatedTranscript(name string, history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.Role == llm.RoleAssistant && isCannedReply(name, m.Content) {
			if n := len(out); n > 0 && out[n-1].Role == llm.RoleUser {
				out = out[:n-1]
			}
			continue
		}
		out = append(out, m)
	}
	return out
}
