package backend

import (
	"strings"

	"fellowship-chat-be/pkg/rag/index"
)

func writeMemory(b *strings.Builder, memory []turn) {
	for _, t := range memory {
		b.WriteString("Human: ")
		b.WriteString(t.question)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.answer)
		b.WriteString("\n")
	}
}

func buildCondensePrompt(memory []turn, question string) string {
	var b strings.Builder
	b.WriteString("Given the conversation below and a follow-up question, rewrite the follow-up as a standalone question in its original language.\n")
	b.WriteString("Reply with the question only.\n\n")
	b.WriteString("Chat History:\n")
	writeMemory(&b, memory)
	b.WriteString("Follow Up Input: ")
	b.WriteString(question)
	b.WriteString("\nStandalone question:")
	return b.String()
}

func buildAnswerPrompt(systemPrompt string, memory []turn, chunks []index.Chunk, question string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	writeMemory(&b, memory)
	b.WriteString("\n\nContext: ")
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
