package driver

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"bugfree/internal/config"
	"bugfree/internal/qname"
)

// Digest is a 64-bit xxhash value used as a cache key.
type Digest uint64

func (d Digest) String() string { return fmt.Sprintf("%016x", uint64(d)) }

// combineDigest: H(part1 || part2 ...). Parts are length-prefixed so
// ("ab","c") and ("a","bc") differ.
func combineDigest(parts ...[]byte) Digest {
	h := xxhash.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		_, _ = h.Write(n[:])
		_, _ = h.Write(p)
	}
	return Digest(h.Sum64())
}

func u64(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

// declKey depends on content only.
func declKey(contentHash uint64) Digest {
	return combineDigest([]byte("decls"), u64(uint64(diskCacheSchemaVersion)), u64(contentHash))
}

// checkKey ties a result to the file's content and path and to everything
// that can change the answer for it.
func checkKey(contentHash uint64, path string, fingerprint Digest) Digest {
	return combineDigest([]byte("check"), u64(uint64(diskCacheSchemaVersion)), u64(contentHash), []byte(path), u64(uint64(fingerprint)))
}

// settings is the part of the configuration that affects check results.
type settings struct {
	EmitLevel    map[string]string
	AutoFix      bool
	RootedPolicy string
	Hints        int
	Oracle       config.OracleConfig
}

// Fingerprint hashes the effective settings, the indexed classes, the
// contents of the class lists and the list of checked files. Map keys are
// sorted so the encoding is stable.
func Fingerprint(cfg *config.Config, autofix bool, declared []qname.Name, files []string) (Digest, error) {
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	var buf bytes.Buffer
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(settings{
		EmitLevel:    cfg.EmitLevel,
		AutoFix:      autofix,
		RootedPolicy: cfg.RootedPolicy,
		Hints:        cfg.Hints,
		Oracle:       cfg.Oracle,
	})
	if err != nil {
		return 0, fmt.Errorf("encode settings: %w", err)
	}

	parts := [][]byte{buf.Bytes()}
	for _, list := range cfg.Oracle.ClassLists {
		data, err := os.ReadFile(cfg.Abs(list))
		if err != nil {
			return 0, fmt.Errorf("read class list: %w", err)
		}
		parts = append(parts, u64(xxhash.Sum64(data)))
	}
	for _, n := range declared {
		parts = append(parts, []byte(n.String()))
	}
	parts = append(parts, []byte{0})
	for _, f := range files {
		parts = append(parts, []byte(f))
	}
	return combineDigest(parts...), nil
}
