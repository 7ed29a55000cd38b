package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/knowledge/store"
)

func chatStore() *fakeStore {
	return &fakeStore{matches: []store.Match{
		{Chunk: store.Chunk{Id: "1", Text: "first context", Metadata: map[string]any{"url": "a"}}, Score: 0.9},
		{Chunk: store.Chunk{Id: "2", Text: "second context", Metadata: map[string]any{"txtPath": "b", "url": "ignored"}}, Score: 0.8},
		{Chunk: store.Chunk{Id: "3", Text: "third context", Metadata: map[string]any{"url": "a"}}, Score: 0.7},
		{Chunk: store.Chunk{Id: "4", Text: "fourth context", Metadata: map[string]any{"other": "no ref"}}, Score: 0.6},
	}}
}

func TestChatAppendsAssistantMessage(t *testing.T) {
	s := chatStore()
	g := newFakeGenerator("What is X?", "  X is a thing.  ")
	service := newService(t, s, &fakeEmbedder{}, g)

	messages := []Message{{Role: RoleUser, Content: "What is X?"}}

	result, err := service.Chat(context.Background(), messages, "docs")
	require.NoError(t, err)

	require.Len(t, result.Messages, len(messages)+1)
	last := result.Messages[len(result.Messages)-1]
	assert.Equal(t, RoleAssistant, last.Role)
	assert.Equal(t, "X is a thing.", last.Content)
	assert.Equal(t, "X is a thing.", result.Text)

	// Input slice is not mutated.
	assert.Len(t, messages, 1)
}

func TestChatReferencesAreDedupedInOrder(t *testing.T) {
	service := newService(t, chatStore(), &fakeEmbedder{}, newFakeGenerator("standalone", "answer"))

	result, err := service.Chat(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, "docs")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, result.References)
}

func TestChatCondensesWithHistory(t *testing.T) {
	g := newFakeGenerator("Standalone question about X?", "answer")
	e := &fakeEmbedder{}
	service := newService(t, chatStore(), e, g)

	messages := []Message{
		{Role: RoleUser, Content: "Tell me about X."},
		{Role: RoleAssistant, Content: "X is a thing."},
		{Role: RoleUser, Content: "What about its history?"},
	}

	_, err := service.Chat(context.Background(), messages, "docs")
	require.NoError(t, err)

	require.Len(t, g.prompts, 2)

	condense := g.prompts[0]
	assert.Contains(t, condense, "user: Tell me about X.")
	assert.Contains(t, condense, "assistant: X is a thing.")
	assert.Contains(t, condense, "Follow Up Input: What about its history?")
	assert.Contains(t, condense, "Standalone question:")

	// The condensed question, not the raw follow-up, drives retrieval.
	assert.Equal(t, []string{"Standalone question about X?"}, e.texts)

	answer := g.prompts[1]
	assert.Contains(t, answer, "first context\nsecond context\nthird context\nfourth context")
	assert.Contains(t, answer, "Question: Standalone question about X?")
}

func TestChatOptions(t *testing.T) {
	g := newFakeGenerator("standalone", "answer")
	service := newService(t, chatStore(), &fakeEmbedder{}, g)

	_, err := service.Chat(
		context.Background(),
		[]Message{{Role: RoleUser, Content: "q"}},
		"docs",
		WithSystemPrompt("You are a pirate."),
		WithModel("gpt-4"),
	)
	require.NoError(t, err)

	require.Len(t, g.prompts, 2)
	assert.True(t, strings.HasPrefix(g.prompts[1], "You are a pirate."))
	assert.Equal(t, []string{"gpt-4", "gpt-4"}, g.models)
}

func TestChatRetrievesTopK(t *testing.T) {
	s := chatStore()
	service := newService(t, s, &fakeEmbedder{}, newFakeGenerator("standalone", "answer"))

	_, err := service.Chat(context.Background(), []Message{{Role: RoleUser, Content: "q"}}, "docs")
	require.NoError(t, err)

	assert.Equal(t, []int{DefaultTopK}, s.searchTopK)
	assert.Equal(t, []string{"docs"}, s.searchNs)
}

func TestChatEmptyConversation(t *testing.T) {
	service := newService(t, chatStore(), &fakeEmbedder{}, newFakeGenerator())

	_, err := service.Chat(context.Background(), nil, "docs")
	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestChatStageFailures(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "q"}}

	t.Run("condense", func(t *testing.T) {
		g := newFakeGenerator()
		g.errAt = 0
		service := newService(t, chatStore(), &fakeEmbedder{}, g)

		_, err := service.Chat(context.Background(), messages, "docs")

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageCondense, stageErr.Stage)
	})

	t.Run("embed", func(t *testing.T) {
		service := newService(t, chatStore(), &fakeEmbedder{err: assert.AnError}, newFakeGenerator("standalone"))

		_, err := service.Chat(context.Background(), messages, "docs")

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageEmbed, stageErr.Stage)
	})

	t.Run("retrieve", func(t *testing.T) {
		s := &fakeStore{searchErr: assert.AnError}
		service := newService(t, s, &fakeEmbedder{}, newFakeGenerator("standalone"))

		_, err := service.Chat(context.Background(), messages, "docs")

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageRetrieve, stageErr.Stage)
	})

	t.Run("answer", func(t *testing.T) {
		g := newFakeGenerator("standalone")
		g.errAt = 1
		service := newService(t, chatStore(), &fakeEmbedder{}, g)

		_, err := service.Chat(context.Background(), messages, "docs")

		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageAnswer, stageErr.Stage)
	})
}
