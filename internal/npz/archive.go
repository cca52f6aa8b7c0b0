// Package npz reads NumPy .npz archives: ZIP containers holding one .npy
// array per entry. Decoding covers the little-endian float dtypes the voice
// archive uses; everything else is reported as unsupported.
package npz

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Archive is an .npz file read fully into memory. Entry payloads are parsed
// lazily by Array, so one damaged entry does not prevent opening the archive
// or reading its neighbors.
type Archive struct {
	entries map[string][]byte
	names   []string
}

// Array is a decoded archive entry.
type Array struct {
	Name  string
	Shape []int64
	Data  []float32
}

// Open reads the archive at path. It fails when the container itself is
// unreadable; per-entry problems are deferred to Array.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("npz: open %s: %w", path, err)
	}

	defer func() { _ = zr.Close() }()

	a := &Archive{entries: make(map[string][]byte, len(zr.File))}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		src, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("npz: open entry %s: %w", f.Name, err)
		}

		raw, err := io.ReadAll(src)
		_ = src.Close()

		if err != nil {
			return nil, fmt.Errorf("npz: read entry %s: %w", f.Name, err)
		}

		name := strings.TrimSuffix(f.Name, ".npy")
		if _, exists := a.entries[name]; exists {
			return nil, fmt.Errorf("npz: duplicate entry %q", name)
		}

		a.entries[name] = raw
		a.names = append(a.names, name)
	}

	sort.Strings(a.names)

	return a, nil
}

// Names returns the entry names in sorted order, without the .npy suffix.
func (a *Archive) Names() []string {
	return append([]string(nil), a.names...)
}

func (a *Archive) Has(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// Array parses and decodes one named entry.
func (a *Archive) Array(name string) (*Array, error) {
	raw, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("npz: array %q not found (available: %s)", name, summarizeNames(a.names))
	}

	hdr, data, err := parseNPY(raw)
	if err != nil {
		return nil, fmt.Errorf("npz: array %q: %w", name, err)
	}

	values, err := decodeFloats(hdr, data)
	if err != nil {
		return nil, fmt.Errorf("npz: array %q: %w", name, err)
	}

	return &Array{
		Name:  name,
		Shape: append([]int64(nil), hdr.shape...),
		Data:  values,
	}, nil
}

func summarizeNames(names []string) string {
	if len(names) == 0 {
		return "none"
	}

	const maxNames = 8
	if len(names) <= maxNames {
		return strings.Join(names, ", ")
	}

	return strings.Join(names[:maxNames], ", ") + ", ..."
}
