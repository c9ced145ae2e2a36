package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstackhq/docvec/internal/embed"
)

func testUnits(pages int, title string) []Unit {
	units := make([]Unit, pages)
	for i := range units {
		units[i] = Unit{
			Content: title + " page content " + string(rune('a'+i)),
			Title:   title,
			Page:    i + 1,
			Source:  "/tmp/pdfs/" + title + ".pdf",
		}
	}
	return units
}

func TestArtifact_AppendAndSearch(t *testing.T) {
	// Given: an empty artifact and a static embedder
	e := embed.NewStaticEmbedder()
	defer func() { _ = e.Close() }()
	a := New(e.Dimensions(), e.ModelName())

	// When: appending three pages
	units := []Unit{
		{Content: "cardiology treatment guidelines", Title: "cardio", Page: 1},
		{Content: "radiology imaging appendix", Title: "radio", Page: 1},
		{Content: "cardiology surgical notes", Title: "cardio", Page: 2},
	}
	n, err := a.Append(context.Background(), e, units)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, a.Count())

	// Then: searching with the embedding of the first text ranks it first
	query, err := e.Embed(context.Background(), "cardiology treatment guidelines")
	require.NoError(t, err)

	results, err := a.Search(query, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "cardio", results[0].Unit.Title)
	assert.Equal(t, 1, results[0].Unit.Page)
	assert.Greater(t, results[0].Score, float32(0.99))
}

func TestArtifact_SaveAndLoadRoundTrip(t *testing.T) {
	e := embed.NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	a := New(e.Dimensions(), e.ModelName())
	_, err := a.Append(context.Background(), e, testUnits(4, "report"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, a.Save(dir))

	// Both constituent files exist
	for _, name := range []string{VectorsFile, DocstoreFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, a.Count(), loaded.Count())
	assert.Equal(t, a.Dimensions(), loaded.Dimensions())
	assert.Equal(t, a.ModelName(), loaded.ModelName())

	// Search results survive the round trip
	query, err := e.Embed(context.Background(), "report page content a")
	require.NoError(t, err)

	before, err := a.Search(query, 1)
	require.NoError(t, err)
	after, err := loaded.Search(query, 1)
	require.NoError(t, err)

	require.Len(t, after, 1)
	assert.Equal(t, before[0].Unit, after[0].Unit)
	assert.InDelta(t, float64(before[0].Score), float64(after[0].Score), 1e-6)
}

func TestLoad_AbsentWhenDirectoryMissing(t *testing.T) {
	a, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestLoad_PartialArtifactIsAbsent(t *testing.T) {
	// Given: a saved artifact with one constituent file removed
	e := embed.NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	a := New(e.Dimensions(), e.ModelName())
	_, err := a.Append(context.Background(), e, testUnits(2, "doc"))
	require.NoError(t, err)

	for _, missing := range []string{VectorsFile, DocstoreFile} {
		dir := t.TempDir()
		require.NoError(t, a.Save(dir))
		require.NoError(t, os.Remove(filepath.Join(dir, missing)))

		// Then: load treats the directory as absent, never partially usable
		loaded, err := Load(dir)
		require.NoError(t, err, "missing %s", missing)
		assert.Nil(t, loaded, "missing %s", missing)
	}
}

func TestLoad_CorruptDocstoreFails(t *testing.T) {
	e := embed.NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	a := New(e.Dimensions(), e.ModelName())
	_, err := a.Append(context.Background(), e, testUnits(1, "doc"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, a.Save(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DocstoreFile), []byte("garbage"), 0o644))

	_, err = Load(dir)
	assert.Error(t, err)
}

func TestAppend_PartialFailureKeepsPriorUnits(t *testing.T) {
	// Given: an embedder that fails on its third call
	e := &failingEmbedder{failOn: 3}
	a := New(e.Dimensions(), e.ModelName())

	// When: appending four units
	n, err := a.Append(context.Background(), e, testUnits(4, "doc"))

	// Then: the error is reported but the first two units are kept
	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, a.Count())
}

func TestAppend_DimensionFixedByFirstVector(t *testing.T) {
	e := embed.NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	// dims 0 = lazily detected
	a := New(0, e.ModelName())
	_, err := a.Append(context.Background(), e, testUnits(1, "doc"))
	require.NoError(t, err)
	assert.Equal(t, embed.StaticDimensions, a.Dimensions())
}

func TestSearch_EmptyArtifact(t *testing.T) {
	a := New(4, "test")
	results, err := a.Search([]float32{1, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	a := New(4, "test")
	_, err := a.Search([]float32{1, 0}, 5)
	assert.Error(t, err)
}

func TestSave_OverwritesPreviousSnapshot(t *testing.T) {
	e := embed.NewStaticEmbedder()
	defer func() { _ = e.Close() }()

	a := New(e.Dimensions(), e.ModelName())
	_, err := a.Append(context.Background(), e, testUnits(1, "doc"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, a.Save(dir))

	_, err = a.Append(context.Background(), e, testUnits(2, "more"))
	require.NoError(t, err)
	require.NoError(t, a.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 3, loaded.Count())
}

// failingEmbedder fails on the Nth Embed call.
type failingEmbedder struct {
	calls  int
	failOn int
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, assert.AnError
	}
	vec := make([]float32, 4)
	vec[f.calls%4] = 1
	return vec, nil
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (f *failingEmbedder) Dimensions() int   { return 4 }
func (f *failingEmbedder) ModelName() string { return "failing" }
func (f *failingEmbedder) Close() error      { return nil }
