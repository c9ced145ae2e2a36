// Package store provides the persisted similarity-search artifact: an HNSW
// vector index plus a document store of the text units behind each vector.
//
// An artifact on disk is exactly two files in one directory, VectorsFile and
// DocstoreFile. Both must be present for the artifact to be valid; partial
// presence is treated as absent.
package store

// Artifact constituent file names.
const (
	// VectorsFile holds the exported HNSW graph.
	VectorsFile = "vectors.hnsw"

	// DocstoreFile holds the gob-encoded document store and index metadata.
	DocstoreFile = "docstore.gob"
)

// Unit is one page's worth of extracted text plus metadata, the atomic item
// embedded into the artifact.
type Unit struct {
	// Content is the extracted page text.
	Content string

	// Title is the document title (PDF metadata or file name).
	Title string

	// Page is the 1-based page number within the source document.
	Page int

	// Source is the local path of the source document.
	Source string
}

// Result is a single similarity-search hit.
type Result struct {
	Unit     Unit
	Distance float32 // Lower is more similar (0-2 for cosine)
	Score    float32 // Normalized similarity (0-1)
}
