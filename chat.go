package knowledge

import (
	"context"
	"strings"

	"github.com/w-h-a/knowledge/generator"
)

// Chat answers the last message of a conversation in two stages: the
// follow-up is first condensed into a standalone question given the prior
// turns, then the standalone question drives retrieval and a grounded
// answer. The assistant's trimmed reply is appended to a copy of the
// conversation. Any stage failure surfaces as a StageError; no partial
// answer is returned.
func (s *Service) Chat(ctx context.Context, messages []Message, namespace string, opts ...ChatOption) (ChatResult, error) {
	if len(messages) == 0 {
		return ChatResult{}, ErrNoMessages
	}

	options := NewChatOptions(opts...)

	var generateOpts []generator.GenerateOption
	if len(options.Model) > 0 {
		generateOpts = append(generateOpts, generator.WithGenerateModel(options.Model))
	}

	followUp := messages[len(messages)-1].Content
	history := formatHistory(messages[:len(messages)-1])

	standalone, err := s.generator.Generate(ctx, condenseQuestionPrompt(history, followUp), generateOpts...)
	if err != nil {
		return ChatResult{}, &StageError{Stage: StageCondense, Err: err}
	}
	standalone = strings.TrimSpace(standalone)

	vector, err := s.embedder.Embed(ctx, standalone)
	if err != nil {
		return ChatResult{}, &StageError{Stage: StageEmbed, Err: err}
	}

	matches, err := s.store.Search(ctx, namespace, vector, DefaultTopK)
	if err != nil {
		return ChatResult{}, &StageError{Stage: StageRetrieve, Err: err}
	}

	references := newReferenceSet()
	contexts := make([]string, 0, len(matches))

	for _, match := range matches {
		if ref := Reference(match.Metadata); len(ref) > 0 {
			references.add(ref)
		} else {
			s.logger.Warn("no reference found for chunk", "chunk", match.Id)
		}
		contexts = append(contexts, match.Text)
	}

	prompt := answerPrompt(options.SystemPrompt, strings.Join(contexts, "\n"), standalone)

	result, err := s.generator.Generate(ctx, prompt, generateOpts...)
	if err != nil {
		return ChatResult{}, &StageError{Stage: StageAnswer, Err: err}
	}

	text := strings.TrimSpace(result)

	updated := make([]Message, 0, len(messages)+1)
	updated = append(updated, messages...)
	updated = append(updated, Message{Role: RoleAssistant, Content: text})

	return ChatResult{
		Messages:   updated,
		Text:       text,
		References: references.values(),
	}, nil
}
