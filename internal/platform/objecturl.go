package platform

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ObjectURLPrefix is the route that serves registered blobs.
const ObjectURLPrefix = "/api/v1/objects/"

// Blob is an in-memory object exposed through a local URL.
type Blob struct {
	Owner       string
	ContentType string
	Data        []byte
}

// ObjectURLs holds blobs addressable by a short-lived local URL until revoked.
type ObjectURLs struct {
	mu    sync.RWMutex
	blobs map[string]Blob
}

func NewObjectURLs() *ObjectURLs {
	return &ObjectURLs{blobs: make(map[string]Blob)}
}

// Create registers data and returns its URL.
func (o *ObjectURLs) Create(owner string, data []byte, contentType string) string {
	id := uuid.NewString()
	o.mu.Lock()
	o.blobs[id] = Blob{Owner: owner, ContentType: contentType, Data: data}
	o.mu.Unlock()
	return ObjectURLPrefix + id
}

// Open returns the blob for id if it exists and belongs to owner.
func (o *ObjectURLs) Open(owner, id string) (Blob, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	blob, ok := o.blobs[id]
	if !ok || blob.Owner != owner {
		return Blob{}, false
	}
	return blob, true
}

// Revoke releases the blob behind url. Unknown URLs are ignored.
func (o *ObjectURLs) Revoke(url string) {
	id := strings.TrimPrefix(url, ObjectURLPrefix)
	if id == "" || id == url {
		return
	}
	o.mu.Lock()
	delete(o.blobs, id)
	o.mu.Unlock()
}

func (o *ObjectURLs) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.blobs)
}
