package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	testCases := []struct {
		name string
		opts []Option
	}{
		{"overlap equals size", []Option{WithChunkSize(100), WithChunkOverlap(100)}},
		{"overlap exceeds size", []Option{WithChunkSize(100), WithChunkOverlap(150)}},
		{"zero size", []Option{WithChunkSize(0), WithChunkOverlap(10)}},
		{"negative size", []Option{WithChunkSize(-1), WithChunkOverlap(10)}},
		{"zero overlap", []Option{WithChunkSize(100), WithChunkOverlap(0)}},
		{"negative overlap", []Option{WithChunkSize(100), WithChunkOverlap(-1)}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := New(testCase.opts...)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSplitShortText(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	assert.Nil(t, s.Split(""))
	assert.Equal(t, []string{"short text"}, s.Split("short text"))
}

func TestSplitUniformText(t *testing.T) {
	s, err := New(WithChunkSize(1000), WithChunkOverlap(140))
	require.NoError(t, err)

	text := strings.Repeat("A", 2500)

	chunks := s.Split(text)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 1000, "chunk %d too long", i)
	}

	for i := 0; i < len(chunks)-1; i++ {
		assert.Equal(t, chunks[i][len(chunks[i])-140:], chunks[i+1][:140])
	}
}

func TestSplitReconstructsOriginal(t *testing.T) {
	s, err := New(WithChunkSize(80), WithChunkOverlap(16))
	require.NoError(t, err)

	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs!\n\n" +
		"Sphinx of black quartz, judge my vow. " +
		"How vexingly quick daft zebras jump.\n" +
		"The five boxing wizards jump quickly and then some more words to push past one chunk."

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	var b strings.Builder
	b.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		overlap := chunks[i][:16]
		assert.True(t, strings.HasSuffix(chunks[i-1], overlap))
		b.WriteString(chunks[i][16:])
	}

	assert.Equal(t, text, b.String())
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	s, err := New(WithChunkSize(100), WithChunkOverlap(20))
	require.NoError(t, err)

	text := strings.Repeat("a", 90) + "\n\n" + strings.Repeat("b", 200)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"))
	assert.LessOrEqual(t, len(chunks[0]), 100)
}

func TestSplitPrefersWordBreaksOverHardCuts(t *testing.T) {
	s, err := New(WithChunkSize(50), WithChunkOverlap(10))
	require.NoError(t, err)

	text := strings.Repeat("word ", 40)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	// Every cut should land after a space rather than inside a word.
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, " "), "chunk %q cut mid-word", chunk)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s, err := New(WithChunkSize(120), WithChunkOverlap(30))
	require.NoError(t, err)

	text := strings.Repeat("Some sentences here. And more there! Why not a question? ", 20)

	first := s.Split(text)
	second := s.Split(text)

	assert.Equal(t, first, second)
}
