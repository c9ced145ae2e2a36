package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstackhq/docvec/internal/pdftest"
)

func TestExtract_PerPageUnits(t *testing.T) {
	// Given: a three-page PDF with a title
	path := filepath.Join(t.TempDir(), "report.pdf")
	pdftest.Write(t, path, pdftest.Doc{
		Title: "Annual Report",
		Pages: []string{
			"Executive summary of the year.",
			"Financial results by quarter.",
			"Outlook for the coming year.",
		},
	})

	e, err := New(Options{})
	require.NoError(t, err)

	// When: extracting
	outcome, err := e.Extract(path)
	require.NoError(t, err)
	require.False(t, outcome.Skipped())

	// Then: one unit per page, 1-based, carrying title and source
	require.Len(t, outcome.Units, 3)
	for i, unit := range outcome.Units {
		assert.Equal(t, i+1, unit.Page)
		assert.Equal(t, "Annual Report", unit.Title)
		assert.Equal(t, path, unit.Source)
		assert.NotEmpty(t, unit.Content)
	}
	assert.Contains(t, outcome.Units[1].Content, "Financial results")
}

func TestExtract_BlankPagesDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.pdf")
	pdftest.Write(t, path, pdftest.Doc{
		Pages: []string{"first page text", "", "third page text"},
	})

	e, err := New(Options{})
	require.NoError(t, err)

	outcome, err := e.Extract(path)
	require.NoError(t, err)

	// Page numbers reflect position in the document, not in the output
	require.Len(t, outcome.Units, 2)
	assert.Equal(t, 1, outcome.Units[0].Page)
	assert.Equal(t, 3, outcome.Units[1].Page)
}

func TestExtract_TitleFallsBackToFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardiology-notes.pdf")
	pdftest.Write(t, path, pdftest.Doc{Pages: []string{"some content"}})

	e, err := New(Options{})
	require.NoError(t, err)

	outcome, err := e.Extract(path)
	require.NoError(t, err)
	require.Len(t, outcome.Units, 1)
	assert.Equal(t, "cardiology-notes", outcome.Units[0].Title)
}

func TestExtract_UnreadableFileSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	e, err := New(Options{})
	require.NoError(t, err)

	// Unreadable input is a skip, not an error
	outcome, err := e.Extract(path)
	require.NoError(t, err)
	assert.True(t, outcome.Skipped())
	assert.Empty(t, outcome.Units)
	assert.Contains(t, outcome.Skip, "unreadable")
}

func TestExtract_AllBlankSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanned.pdf")
	pdftest.Write(t, path, pdftest.Doc{Pages: []string{"", ""}})

	e, err := New(Options{})
	require.NoError(t, err)

	outcome, err := e.Extract(path)
	require.NoError(t, err)
	assert.True(t, outcome.Skipped())
	assert.Contains(t, outcome.Skip, "no extractable text")
}

func TestExtract_MissingFileSkips(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	outcome, err := e.Extract(filepath.Join(t.TempDir(), "absent.pdf"))
	require.NoError(t, err)
	assert.True(t, outcome.Skipped())
}

func TestTruncate_CapsAtTokenBudget(t *testing.T) {
	e, err := New(Options{MaxPageTokens: 5})
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}

	long := strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)
	got, truncated := e.truncate(long)
	assert.True(t, truncated)
	assert.Less(t, len(got), len(long))

	tokens := e.encoder.Encode(got, nil, nil)
	assert.LessOrEqual(t, len(tokens), 5)
}

func TestTruncate_ShortTextUntouched(t *testing.T) {
	e, err := New(Options{MaxPageTokens: 100})
	if err != nil {
		t.Skipf("token encoding unavailable: %v", err)
	}

	got, truncated := e.truncate("short text")
	assert.False(t, truncated)
	assert.Equal(t, "short text", got)
}

func TestTruncate_DisabledWhenZero(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)

	long := strings.Repeat("word ", 100000)
	got, truncated := e.truncate(long)
	assert.False(t, truncated)
	assert.Equal(t, long, got)
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New(Options{MaxPageTokens: 10, Encoding: "no-such-encoding"})
	require.Error(t, err)
}
