package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/qname"
)

// Current schema version - increment when a payload format changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты по файлам на диске: объявленные классы по
// хэшу содержимого и результаты проверки по ключу файл+конфигурация.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DeclPayload caches the classes a file declares. It depends on content
// only.
type DeclPayload struct {
	Schema   uint16
	Declared []string
}

// CheckPayload caches the outcome of checking one file under one
// configuration and oracle.
type CheckPayload struct {
	Schema      uint16
	Diagnostics []diag.Diagnostic
	Fixes       []fix.Fix
}

// OpenDiskCache creates dir if needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(bucket string, key Digest) string {
	// Для удобства очистки: подкаталог на вид записи.
	return filepath.Join(c.dir, bucket, key.String()+".mp")
}

func (c *DiskCache) put(bucket string, key Digest, payload any) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(bucket, key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (c *DiskCache) get(bucket string, key Digest, out any) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(bucket, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// PutDecls stores the declared classes of a file.
func (c *DiskCache) PutDecls(key Digest, names []qname.Name) error {
	payload := DeclPayload{Schema: diskCacheSchemaVersion, Declared: make([]string, len(names))}
	for i, n := range names {
		payload.Declared[i] = n.String()
	}
	return c.put("decls", key, &payload)
}

// GetDecls reads declared classes back. A schema mismatch is a miss.
func (c *DiskCache) GetDecls(key Digest) ([]qname.Name, bool, error) {
	var payload DeclPayload
	ok, err := c.get("decls", key, &payload)
	if !ok || err != nil || payload.Schema != diskCacheSchemaVersion {
		return nil, false, err
	}
	names := make([]qname.Name, 0, len(payload.Declared))
	for _, s := range payload.Declared {
		names = append(names, qname.Parse(s))
	}
	return names, true, nil
}

// PutCheck stores a check result.
func (c *DiskCache) PutCheck(key Digest, diags []diag.Diagnostic, fixes []fix.Fix) error {
	return c.put("checks", key, &CheckPayload{Schema: diskCacheSchemaVersion, Diagnostics: diags, Fixes: fixes})
}

// GetCheck reads a check result back. A schema mismatch is a miss.
func (c *DiskCache) GetCheck(key Digest) (*CheckPayload, bool, error) {
	var payload CheckPayload
	ok, err := c.get("checks", key, &payload)
	if !ok || err != nil || payload.Schema != diskCacheSchemaVersion {
		return nil, false, err
	}
	return &payload, true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, чтобы параллельный запуск не увидел полупустой кэш
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
