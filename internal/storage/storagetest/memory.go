// Package storagetest provides an in-memory storage.Service for tests.
package storagetest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"file-portal/internal/domain"
	"file-portal/internal/storage"
)

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory implements storage.Service backed by a map. Listing order is insertion order.
// Setting FailOn[op] (one of storage.OpList, storage.OpUpload, storage.OpPresign)
// makes that operation fail with an *storage.OperationError.
type Memory struct {
	mu      sync.Mutex
	objects map[string]map[string]*Object
	order   map[string][]string

	FailOn   map[string]error
	PutCalls int
}

var _ storage.Service = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]map[string]*Object),
		order:   make(map[string][]string),
		FailOn:  make(map[string]error),
	}
}

// Get returns the object stored under bucket/key.
func (m *Memory) Get(bucket, key string) (*Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket][key]
	return obj, ok
}

// Put stores data directly, bypassing failure injection and PutCalls.
func (m *Memory) Put(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(bucket, key, &Object{Data: data})
}

func (m *Memory) put(bucket, key string, obj *Object) {
	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string]*Object)
	}
	if _, exists := m.objects[bucket][key]; !exists {
		m.order[bucket] = append(m.order[bucket], key)
	}
	m.objects[bucket][key] = obj
}

func (m *Memory) fail(op, bucket, key string) error {
	if err := m.FailOn[op]; err != nil {
		return &storage.OperationError{Op: op, Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

func (m *Memory) ListObjects(_ context.Context, bucket, prefix string) ([]domain.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(storage.OpList, bucket, prefix); err != nil {
		return nil, err
	}

	objects := []domain.Object{}
	for _, key := range m.order[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, domain.Object{Key: key, Size: int64(len(m.objects[bucket][key].Data))})
	}
	return objects, nil
}

func (m *Memory) Upload(_ context.Context, body io.Reader, opts storage.UploadOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if err := m.fail(storage.OpUpload, opts.Bucket, opts.Key); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return &storage.OperationError{Op: storage.OpUpload, Bucket: opts.Bucket, Key: opts.Key, Err: err}
	}
	if opts.ProgressCallback != nil {
		opts.ProgressCallback(int64(len(data)), opts.Size)
	}
	m.put(opts.Bucket, opts.Key, &Object{Data: data, ContentType: opts.ContentType})
	return nil
}

// GetObjectURL returns a fake signed URL carrying X-Amz-Date and X-Amz-Expires like S3 does.
func (m *Memory) GetObjectURL(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(storage.OpPresign, bucket, key); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("X-Amz-Date", time.Now().UTC().Format("20060102T150405Z"))
	q.Set("X-Amz-Expires", strconv.Itoa(int(expires/time.Second)))
	return fmt.Sprintf("https://%s.s3.example.com/%s?%s", bucket, url.PathEscape(key), q.Encode()), nil
}
