package memory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bizdir/company-api/internal/core/ports"
)

const mediaBaseURL = "memory://media"

// MediaStore keeps uploaded bytes in memory and records deletions.
type MediaStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	destroyed []string
}

var _ ports.MediaStore = (*MediaStore)(nil)

func NewMediaStore() *MediaStore {
	return &MediaStore{objects: make(map[string][]byte)}
}

func (m *MediaStore) Upload(_ context.Context, obj ports.MediaObject) (string, error) {
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	key := path.Join(obj.Folder, uuid.NewString()+"."+obj.Format)

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return mediaBaseURL + "/" + key, nil
}

func (m *MediaStore) Destroy(_ context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.destroyed = append(m.destroyed, assetID)
	if _, ok := m.objects[assetID]; !ok {
		return fmt.Errorf("asset %q not found", assetID)
	}
	delete(m.objects, assetID)
	return nil
}

func (m *MediaStore) AssetID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || path.Ext(segments[len(segments)-1]) == "" {
		return "", fmt.Errorf("asset id not derivable from %q", rawURL)
	}
	return strings.Join(segments[len(segments)-2:], "/"), nil
}

// Destroyed returns every asset id passed to Destroy, in order.
func (m *MediaStore) Destroyed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.destroyed...)
}

// Len returns the number of stored objects.
func (m *MediaStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
