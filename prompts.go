package knowledge

import (
	"fmt"
	"strings"
)

const condenseQuestionTemplate = `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.

Chat History:
%s

Follow Up Input: %s
Standalone question:`

func condenseQuestionPrompt(history string, followUp string) string {
	return fmt.Sprintf(condenseQuestionTemplate, history, followUp)
}

func answerPrompt(systemPrompt string, context string, question string) string {
	lines := []string{}

	if len(systemPrompt) > 0 {
		lines = append(lines, systemPrompt)
	}

	lines = append(lines,
		"Answer the question based only on the following context:",
		context,
		"",
		"Question: "+question,
		"",
	)

	return strings.Join(lines, "\n")
}

// formatHistory serializes prior turns as "role: content" lines in order.
func formatHistory(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, message := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", message.Role, message.Content))
	}
	return strings.Join(lines, "\n")
}
