package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nikhilbhutani/agencyhub/internal/store"
)

type Object struct {
	Data        []byte
	ContentType string
}

// Files is an object store held in memory.
type Files struct {
	mu      sync.Mutex
	objects map[string]Object
	// FailUploads makes Upload return an error.
	FailUploads bool
}

func NewFiles() *Files {
	return &Files{objects: make(map[string]Object)}
}

func (f *Files) Upload(_ context.Context, bucket, path string, data io.Reader, contentType string) error {
	if f.FailUploads {
		return fmt.Errorf("upload %s/%s: storage unavailable", bucket, path)
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+path] = Object{Data: b, ContentType: contentType}
	return nil
}

func (f *Files) Delete(_ context.Context, bucket, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[bucket+"/"+path]; !ok {
		return store.ErrNotFound
	}
	delete(f.objects, bucket+"/"+path)
	return nil
}

func (f *Files) CreateSignedURL(_ context.Context, bucket, path string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[bucket+"/"+path]; !ok {
		return "", store.ErrNotFound
	}
	return fmt.Sprintf("memory://%s/%s?expires_in=%d", bucket, path, int(ttl.Seconds())), nil
}

// Object returns a stored object by bucket and path.
func (f *Files) Object(bucket, path string) (Object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[bucket+"/"+path]
	return o, ok
}

func (f *Files) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
