package storage

import (
	"context"
	"sync"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Memory keeps uploaded images in process memory. It is used when no
// Cloudinary account is configured.
type Memory struct {
	mu     sync.RWMutex
	images map[string]model.ImageUpload
}

var _ interfaces.ImageStore = (*Memory)(nil)

// NewMemory creates an empty in-memory image store
func NewMemory() *Memory {
	return &Memory{images: make(map[string]model.ImageUpload)}
}

// Store saves a copy of the image under a generated reference
func (m *Memory) Store(ctx context.Context, image *model.ImageUpload) (*model.StoredImage, error) {
	if image == nil || len(image.Data) == 0 {
		return nil, goerr.New("image is empty")
	}

	ref := DefaultFolder + "/" + uuid.NewString()
	stored := *image
	stored.Data = append([]byte(nil), image.Data...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[ref] = stored

	return &model.StoredImage{URL: "memory://" + ref, Ref: ref}, nil
}

// Delete removes the image. Unknown references are ignored.
func (m *Memory) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.images, ref)
	return nil
}

// Get returns a stored image
func (m *Memory) Get(ref string) (*model.ImageUpload, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	image, ok := m.images[ref]
	if !ok {
		return nil, false
	}
	return &image, true
}

// Len returns the number of stored images
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}
