package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"caselens/internal/domain"
)

// The index is two parallel artifacts inside a version directory:
// meta.json (chunk metadata, one entry per row) and embeddings.bin
// (dense float32 matrix, row-major). Row i of the matrix always belongs
// to entry i of the metadata. A CURRENT pointer file names the live
// version directory and is replaced atomically, so readers see either
// the old index or the new one, never a mismatched pair.

const (
	metaFile    = "meta.json"
	vectorsFile = "embeddings.bin"
	currentFile = "CURRENT"

	binMagic   = "CLIX"
	binVersion = 1
)

// Index is a fully loaded embedding index.
type Index struct {
	Model   string
	Dims    int
	Vectors [][]float32
	Entries []domain.Chunk
}

// Handle resolves and caches the on-disk index. Load is cheap when the
// CURRENT pointer has not moved; Invalidate drops the cache after a
// rebuild in the same process.
type Handle struct {
	dir string

	mu      sync.RWMutex
	version string
	idx     *Index
}

func NewHandle(dir string) *Handle {
	return &Handle{dir: dir}
}

// Load returns the current index, or (nil, nil) when none has been
// built yet. "No index" is a first-class state, not an error.
func (h *Handle) Load() (*Index, error) {
	version, err := readCurrent(h.dir)
	if err != nil {
		return nil, err
	}
	if version == "" {
		return nil, nil
	}

	h.mu.RLock()
	if h.idx != nil && h.version == version {
		idx := h.idx
		h.mu.RUnlock()
		return idx, nil
	}
	h.mu.RUnlock()

	idx, err := loadVersion(filepath.Join(h.dir, version))
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.version = version
	h.idx = idx
	h.mu.Unlock()
	return idx, nil
}

// Invalidate drops the cached index so the next Load re-reads CURRENT.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	h.version = ""
	h.idx = nil
	h.mu.Unlock()
}

func readCurrent(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, currentFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func loadVersion(dir string) (*Index, error) {
	model, vectors, dims, err := readVectors(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, err
	}
	var entries []domain.Chunk
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("index metadata %s: %w", dir, err)
	}
	if len(entries) != len(vectors) {
		return nil, fmt.Errorf("index %s: %d metadata entries but %d vector rows", dir, len(entries), len(vectors))
	}
	return &Index{Model: model, Dims: dims, Vectors: vectors, Entries: entries}, nil
}

func writeVectors(path, model string, vectors [][]float32, dims int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := w.WriteString(binMagic); err != nil {
		return err
	}
	hdr := []any{
		uint32(binVersion),
		uint16(len(model)),
	}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.WriteString(model); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vectors))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dims)); err != nil {
		return err
	}
	for i, row := range vectors {
		if len(row) != dims {
			return fmt.Errorf("vector row %d has %d dims, want %d", i, len(row), dims)
		}
		for _, x := range row {
			if err := binary.Write(w, binary.LittleEndian, math.Float32bits(x)); err != nil {
				return err
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func readVectors(path string) (model string, vectors [][]float32, dims int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, 0, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	magic := make([]byte, len(binMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return "", nil, 0, fmt.Errorf("index vectors %s: %w", path, err)
	}
	if string(magic) != binMagic {
		return "", nil, 0, fmt.Errorf("index vectors %s: bad magic", path)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return "", nil, 0, err
	}
	if version != binVersion {
		return "", nil, 0, fmt.Errorf("index vectors %s: unsupported format version %d", path, version)
	}
	var modelLen uint16
	if err := binary.Read(r, binary.LittleEndian, &modelLen); err != nil {
		return "", nil, 0, err
	}
	modelBytes := make([]byte, modelLen)
	if _, err := io.ReadFull(r, modelBytes); err != nil {
		return "", nil, 0, err
	}
	var rows, cols uint32
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return "", nil, 0, err
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return "", nil, 0, err
	}
	vectors = make([][]float32, rows)
	for i := range vectors {
		row := make([]float32, cols)
		for j := range row {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return "", nil, 0, fmt.Errorf("index vectors %s: truncated at row %d: %w", path, i, err)
			}
			row[j] = math.Float32frombits(bits)
		}
		vectors[i] = row
	}
	return string(modelBytes), vectors, int(cols), nil
}
