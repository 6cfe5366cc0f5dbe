package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		want      []string
	}{
		{name: "empty", text: "   ", chunkSize: 10, overlap: 2, want: nil},
		{name: "fits in one chunk", text: "The Shire", chunkSize: 20, overlap: 5, want: []string{"The Shire"}},
		{name: "breaks at whitespace", text: "alpha beta gamma delta", chunkSize: 12, overlap: 0, want: []string{"alpha beta", "gamma delta"}},
		{name: "hard cut without whitespace", text: "abcdefghij", chunkSize: 4, overlap: 0, want: []string{"abcd", "efgh", "ij"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitText(tt.text, tt.chunkSize, tt.overlap))
		})
	}
}

func TestSplitTextOverlapAndBounds(t *testing.T) {
	text := strings.Repeat("Frodo carried the ring toward Mordor. ", 60)

	chunks := SplitText(text, 200, 50)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 200)
	}

	// Neighbouring chunks share text when overlap is requested.
	tail := chunks[0][len(chunks[0])-20:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("• élan ", 40)
	for _, c := range SplitText(text, 30, 5) {
		assert.True(t, utf8.ValidString(c))
	}
}
