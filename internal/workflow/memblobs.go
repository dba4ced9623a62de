package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var _ BlobStore = (*MemoryBlobs)(nil)

// MemoryBlobs keeps uploads in memory and hands out memory:// URLs.
type MemoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	// Fail, when set, is returned from every Put.
	Fail error
}

func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{objects: make(map[string][]byte)}
}

func (b *MemoryBlobs) Put(ctx context.Context, projectID uuid.UUID, filename, contentType string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail != nil {
		return "", b.Fail
	}
	url := fmt.Sprintf("memory://projects/%s/feedback/%s-%s", projectID, uuid.NewString(), filename)
	b.objects[url] = append([]byte(nil), data...)
	return url, nil
}

// Len reports how many objects were stored.
func (b *MemoryBlobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
