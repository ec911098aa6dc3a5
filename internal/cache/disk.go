package cache

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// indexEntry is one line of the disk tier's sidecar index: key ->
// (filename, length, last_used_epoch), per spec §6's persisted-state
// layout.
type indexEntry struct {
	Filename    string
	Length      int
	LastUsedSec int64
}

// DiskStore is the optional disk persistence tier of spec §4.8/§6: a
// directory of "<16-hex-of-key>.f32" files holding raw little-endian
// f32 mono samples, plus a sidecar "index" file, so a later process
// run can skip resynthesis. It is a standalone store: the in-memory
// Cache neither consults nor writes it, and callers Load from and
// Store to it directly.
type DiskStore struct {
	dir string

	mu    sync.Mutex
	index map[Key]indexEntry
}

// OpenDiskStore opens (creating if absent) a disk cache rooted at dir
// and loads its sidecar index.
func OpenDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: open disk store: %w", err)
	}
	ds := &DiskStore{dir: dir, index: make(map[Key]indexEntry)}
	if err := ds.loadIndex(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (ds *DiskStore) indexPath() string { return filepath.Join(ds.dir, "index") }

func (ds *DiskStore) loadIndex() error {
	f, err := os.Open(ds.indexPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache: read index: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var keyHex, name string
		var length int
		var lastUsed int64
		_, err := fmt.Sscanf(sc.Text(), "%s %s %d %d", &keyHex, &name, &length, &lastUsed)
		if err != nil {
			continue
		}
		raw, err := hex.DecodeString(keyHex)
		if err != nil || len(raw) != 8 {
			continue
		}
		key := Key(binary.LittleEndian.Uint64(raw))
		ds.index[key] = indexEntry{Filename: name, Length: length, LastUsedSec: lastUsed}
	}
	return sc.Err()
}

func (ds *DiskStore) saveIndexLocked() error {
	f, err := os.Create(ds.indexPath())
	if err != nil {
		return fmt.Errorf("cache: write index: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for key, e := range ds.index {
		var raw [8]byte
		binary.LittleEndian.PutUint64(raw[:], uint64(key))
		fmt.Fprintf(w, "%s %s %d %d\n", hex.EncodeToString(raw[:]), e.Filename, e.Length, e.LastUsedSec)
	}
	return w.Flush()
}

func keyFilename(key Key) string {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], uint64(key))
	return hex.EncodeToString(raw[:]) + ".f32"
}

// Load reads the persisted sample for key, verifying its length
// against the index entry. A mismatch (spec §7 CacheError: "disk
// cache corruption; the entry is deleted and the miss falls through
// to synthesis") deletes the entry and reports a miss rather than
// returning corrupt data.
func (ds *DiskStore) Load(key Key) ([]float32, bool) {
	ds.mu.Lock()
	e, ok := ds.index[key]
	ds.mu.Unlock()
	if !ok {
		return nil, false
	}

	path := filepath.Join(ds.dir, e.Filename)
	raw, err := os.ReadFile(path)
	if err != nil || len(raw)%4 != 0 || len(raw)/4 != e.Length {
		ds.deleteLocked(key)
		return nil, false
	}

	data := make([]float32, e.Length)
	for i := range data {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		data[i] = math.Float32frombits(bits)
	}
	return data, true
}

// Store writes data for key to disk and records it in the index.
func (ds *DiskStore) Store(key Key, data []float32, nowEpoch int64) error {
	name := keyFilename(key)
	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	if err := os.WriteFile(filepath.Join(ds.dir, name), raw, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", name, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.index[key] = indexEntry{Filename: name, Length: len(data), LastUsedSec: nowEpoch}
	return ds.saveIndexLocked()
}

func (ds *DiskStore) deleteLocked(key Key) {
	ds.mu.Lock()
	e, ok := ds.index[key]
	if ok {
		delete(ds.index, key)
		os.Remove(filepath.Join(ds.dir, e.Filename))
		ds.saveIndexLocked()
	}
	ds.mu.Unlock()
}

