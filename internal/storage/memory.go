package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Client used by tests and offline smoke runs.
// It records call counts so tests can assert cache-reuse behavior.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte // "bucket/key" -> content

	// Call counters, readable via the accessor methods.
	listCalls     int
	downloadCalls int
	uploadCalls   int

	// FailDownload makes Download fail for keys containing the substring.
	FailDownload string
}

// NewMemory creates an empty in-memory storage client.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Put seeds an object directly (test setup).
func (m *Memory) Put(bucket, key string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = append([]byte(nil), content...)
}

// Get reads an object directly (test assertions). Second result reports existence.
func (m *Memory) Get(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+key]
	return data, ok
}

// List returns objects under bucket/prefix sorted by key, matching S3's
// lexicographic listing order.
func (m *Memory) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	full := bucket + "/" + prefix
	var objects []Object
	for name, data := range m.objects {
		if strings.HasPrefix(name, full) {
			objects = append(objects, Object{
				Key:  strings.TrimPrefix(name, bucket+"/"),
				Size: int64(len(data)),
			})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Download writes the stored object to localPath.
func (m *Memory) Download(ctx context.Context, bucket, key, localPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadCalls++

	if m.FailDownload != "" && strings.Contains(key, m.FailDownload) {
		return fmt.Errorf("simulated download failure for %s", key)
	}

	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, bucket, key)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

// Upload stores the file at localPath under bucket/key.
func (m *Memory) Upload(ctx context.Context, localPath, bucket, key string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls++
	m.objects[bucket+"/"+key] = data
	return nil
}

// ListCalls returns the number of List invocations.
func (m *Memory) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// DownloadCalls returns the number of Download invocations.
func (m *Memory) DownloadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloadCalls
}

// UploadCalls returns the number of Upload invocations.
func (m *Memory) UploadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadCalls
}

// Keys returns all "bucket/key" names currently stored, sorted.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify interface implementation
var _ Client = (*Memory)(nil)
