package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPagesText(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "fellowship.txt", "Name: Frodo\r\nRace: Hobbit\fName: Sam")
	second := writeFile(t, dir, "wizards.txt", "Name: Gandalf")

	pages, err := NewLoader().LoadPages([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name: Frodo\nRace: Hobbit", "Name: Sam", "Name: Gandalf"}, pages)
}

func TestLoadPagesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader().LoadPages([]string{writeFile(t, dir, "sheet.docx", "x")})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewLoader().LoadPages([]string{filepath.Join(dir, "missing.txt")})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewLoader().LoadPages([]string{writeFile(t, dir, "broken.pdf", "not a pdf")})
	assert.Error(t, err)
}
