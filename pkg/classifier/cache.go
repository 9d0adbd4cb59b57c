package classifier

import (
	"fmt"
	"sync"

	"github.com/i5heu/pinforest/internal/binaryCoder"
	"github.com/i5heu/pinforest/pkg/interfaces"
	"github.com/i5heu/pinforest/pkg/types"
)

// Keys of the two persisted mappings.
const (
	NonDirectoryKey = "non-dir-blocks"
	DirectoryKey    = "dir-blocks"
)

var nonDirectorySentinel = []byte{1}

// Cache remembers classification outcomes. Non-directory verdicts live in the
// durable handle and are permanent; directory records live in the session
// handle. An id is never in both sets.
type Cache struct {
	mu      sync.RWMutex
	durable interfaces.KeyValue
	session interfaces.KeyValue

	nonDirs map[types.ContentID]struct{}
	dirs    map[types.ContentID]types.ObjectRecord
}

// LoadCache reads both mappings from their handles.
func LoadCache(durable, session interfaces.KeyValue) (*Cache, error) {
	c := &Cache{
		durable: durable,
		session: session,
		nonDirs: make(map[types.ContentID]struct{}),
		dirs:    make(map[types.ContentID]types.ObjectRecord),
	}

	nonDirs, err := loadMapping(durable, NonDirectoryKey)
	if err != nil {
		return nil, err
	}
	for id := range nonDirs {
		c.nonDirs[types.ContentID(id)] = struct{}{}
	}

	dirs, err := loadMapping(session, DirectoryKey)
	if err != nil {
		return nil, err
	}
	for id, raw := range dirs {
		if _, ok := c.nonDirs[types.ContentID(id)]; ok {
			continue
		}
		rec, err := binaryCoder.ByteToRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("error loading %s entry %s: %w", DirectoryKey, id, types.ErrDecode)
		}
		c.dirs[types.ContentID(id)] = rec
	}

	return c, nil
}

func loadMapping(kv interfaces.KeyValue, key string) (map[string][]byte, error) {
	raw, found, err := kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", key, err)
	}
	if !found {
		return map[string][]byte{}, nil
	}
	m, err := binaryCoder.ByteToMapping(raw)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %v: %w", key, err, types.ErrDecode)
	}
	return m, nil
}

func (c *Cache) IsNonDirectory(id types.ContentID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.nonDirs[id]
	return ok
}

func (c *Cache) Directory(id types.ContentID) (types.ObjectRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.dirs[id]
	return rec, ok
}

// MarkNonDirectory records a permanent non-directory verdict and writes the
// durable mapping back.
func (c *Cache) MarkNonDirectory(id types.ContentID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nonDirs[id]; ok {
		return nil
	}
	c.nonDirs[id] = struct{}{}

	if _, ok := c.dirs[id]; ok {
		delete(c.dirs, id)
		if err := c.persistDirs(); err != nil {
			return err
		}
	}
	return c.persistNonDirs()
}

// MarkDirectory caches the directory record fetched for id for the session.
// Ids already known as non-directories are left alone.
func (c *Cache) MarkDirectory(id types.ContentID, rec types.ObjectRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nonDirs[id]; ok {
		return nil
	}
	c.dirs[id] = rec
	return c.persistDirs()
}

// Sizes returns the number of directory and non-directory entries.
func (c *Cache) Sizes() (dirs, nonDirs int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dirs), len(c.nonDirs)
}

func (c *Cache) persistNonDirs() error {
	m := make(map[string][]byte, len(c.nonDirs))
	for id := range c.nonDirs {
		m[id.String()] = nonDirectorySentinel
	}
	if err := c.durable.Set(NonDirectoryKey, binaryCoder.MappingToByte(m)); err != nil {
		return fmt.Errorf("error persisting %s: %w", NonDirectoryKey, err)
	}
	return nil
}

func (c *Cache) persistDirs() error {
	m := make(map[string][]byte, len(c.dirs))
	for id, rec := range c.dirs {
		m[id.String()] = binaryCoder.RecordToByte(rec)
	}
	if err := c.session.Set(DirectoryKey, binaryCoder.MappingToByte(m)); err != nil {
		return fmt.Errorf("error persisting %s: %w", DirectoryKey, err)
	}
	return nil
}
