package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/coder/hnsw"

	"github.com/docstackhq/docvec/internal/embed"
)

// HNSW parameters. M and EfSearch follow the coder/hnsw recommendations for
// collections in the tens of thousands of vectors.
const (
	hnswM        = 16
	hnswEfSearch = 20
	hnswMl       = 0.25
)

// Artifact is the in-memory similarity-search index plus its document store.
// It is owned and mutated by a single control thread; it is not safe for
// concurrent use.
type Artifact struct {
	graph   *hnsw.Graph[uint64]
	units   map[uint64]Unit
	nextKey uint64
	dims    int
	model   string
}

// docstoreData is the gob persistence schema for everything except the graph.
type docstoreData struct {
	Units   map[uint64]Unit
	NextKey uint64
	Dims    int
	Model   string
}

// New creates an empty artifact for the given embedding dimension and model.
// dims may be 0 when the provider detects its dimension lazily; the first
// Append fixes it.
func New(dims int, model string) *Artifact {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = hnswM
	graph.EfSearch = hnswEfSearch
	graph.Ml = hnswMl

	return &Artifact{
		graph: graph,
		units: make(map[uint64]Unit),
		dims:  dims,
		model: model,
	}
}

// Load reads an artifact from dir. Returns (nil, nil) when the artifact is
// absent: either constituent file missing means absent, never partially
// usable. An error is returned only when both files exist but cannot be read.
func Load(dir string) (*Artifact, error) {
	vectorsPath := filepath.Join(dir, VectorsFile)
	docstorePath := filepath.Join(dir, DocstoreFile)

	for _, path := range []string{vectorsPath, docstorePath} {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	f, err := os.Open(docstorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open docstore: %w", err)
	}
	defer func() { _ = f.Close() }()

	var data docstoreData
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode docstore: %w", err)
	}

	a := New(data.Dims, data.Model)
	a.units = data.Units
	if a.units == nil {
		a.units = make(map[uint64]Unit)
	}
	a.nextKey = data.NextKey

	vf, err := os.Open(vectorsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %w", err)
	}
	defer func() { _ = vf.Close() }()

	// coder/hnsw Import requires an io.ByteReader
	if err := a.graph.Import(bufio.NewReader(vf)); err != nil {
		return nil, fmt.Errorf("failed to import vector index: %w", err)
	}

	return a, nil
}

// Append embeds each unit's content and merges the resulting vectors into the
// artifact, preserving existing entries. Units are embedded sequentially and
// each one is committed before the next is attempted, so a provider failure
// partway through reports an error without discarding units already appended.
// Returns the number of units appended.
func (a *Artifact) Append(ctx context.Context, embedder embed.Embedder, units []Unit) (int, error) {
	appended := 0
	for _, unit := range units {
		vec, err := embedder.Embed(ctx, unit.Content)
		if err != nil {
			return appended, fmt.Errorf("embedding page %d of %q: %w", unit.Page, unit.Title, err)
		}

		if a.dims == 0 {
			a.dims = len(vec)
		}
		if len(vec) != a.dims {
			return appended, fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), a.dims)
		}

		// Normalize for cosine similarity
		normalized := make([]float32, len(vec))
		copy(normalized, vec)
		normalizeVectorInPlace(normalized)

		key := a.nextKey
		a.nextKey++
		a.graph.Add(hnsw.MakeNode(key, normalized))
		a.units[key] = unit
		appended++
	}

	return appended, nil
}

// Save writes both constituent files to dir, each via temp file + rename.
// The artifact is valid at dir only once Save returns nil; callers must not
// treat a directory holding a single file as usable.
func (a *Artifact) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	if err := a.saveVectors(filepath.Join(dir, VectorsFile)); err != nil {
		return err
	}
	return a.saveDocstore(filepath.Join(dir, DocstoreFile))
}

// saveVectors exports the HNSW graph atomically.
func (a *Artifact) saveVectors(path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create vector index file: %w", err)
	}

	if err := a.graph.Export(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to export graph: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close vector index file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename vector index file: %w", err)
	}
	return nil
}

// saveDocstore writes the document store atomically.
func (a *Artifact) saveDocstore(path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create docstore file: %w", err)
	}

	data := docstoreData{
		Units:   a.units,
		NextKey: a.nextKey,
		Dims:    a.dims,
		Model:   a.model,
	}

	if err := gob.NewEncoder(f).Encode(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to encode docstore: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close docstore file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename docstore file: %w", err)
	}
	return nil
}

// Search finds the k nearest units to the query vector.
func (a *Artifact) Search(query []float32, k int) ([]Result, error) {
	if a.dims != 0 && len(query) != a.dims {
		return nil, fmt.Errorf("dimension mismatch: got %d, want %d", len(query), a.dims)
	}
	if a.graph.Len() == 0 {
		return []Result{}, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeVectorInPlace(normalized)

	nodes := a.graph.Search(normalized, k)

	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		unit, ok := a.units[node.Key]
		if !ok {
			continue
		}
		distance := a.graph.Distance(normalized, node.Value)
		results = append(results, Result{
			Unit:     unit,
			Distance: distance,
			Score:    1.0 - distance/2.0,
		})
	}

	return results, nil
}

// Count returns the number of units in the artifact.
func (a *Artifact) Count() int {
	return len(a.units)
}

// Dimensions returns the embedding dimension.
func (a *Artifact) Dimensions() int {
	return a.dims
}

// ModelName returns the embedding model the artifact was built with.
func (a *Artifact) ModelName() string {
	return a.model
}

// normalizeVectorInPlace normalizes a vector to unit length in place.
func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}
