package testutil

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
)

// NPYArray describes one entry for WriteNPZ fixtures. Descr defaults to
// "<f4". Raw, when set, is written verbatim so tests can craft corrupted
// entries.
type NPYArray struct {
	Name  string
	Descr string
	Shape []int64
	Data  []float32
	Raw   []byte
}

// WriteNPZ writes a .npz archive usable as a voice-embedding fixture.
func WriteNPZ(tb testing.TB, path string, arrays []NPYArray) {
	tb.Helper()

	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create npz fixture: %v", err)
	}

	zw := zip.NewWriter(f)

	for _, a := range arrays {
		w, err := zw.Create(a.Name + ".npy")
		if err != nil {
			tb.Fatalf("create npz entry %s: %v", a.Name, err)
		}

		payload := a.Raw
		if payload == nil {
			payload = EncodeNPY(a.Descr, a.Shape, a.Data)
		}

		if _, err := w.Write(payload); err != nil {
			tb.Fatalf("write npz entry %s: %v", a.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		tb.Fatalf("close npz writer: %v", err)
	}

	if err := f.Close(); err != nil {
		tb.Fatalf("close npz fixture: %v", err)
	}
}

// EncodeNPY serializes a little-endian float array in npy v1 format. A
// non-float descr still gets an f4 payload; such fixtures exist to exercise
// dtype rejection.
func EncodeNPY(descr string, shape []int64, data []float32) []byte {
	if descr == "" {
		descr = "<f4"
	}

	var dims []string
	for _, d := range shape {
		dims = append(dims, strconv.FormatInt(d, 10))
	}

	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)

	// numpy pads the header so the payload starts 64-byte aligned.
	total := 10 + len(header) + 1
	pad := (64 - total%64) % 64
	header += strings.Repeat(" ", pad) + "\n"

	buf := make([]byte, 0, 10+len(header)+len(data)*8)
	buf = append(buf, "\x93NUMPY"...)
	buf = append(buf, 1, 0)

	var hlen [2]byte
	binary.LittleEndian.PutUint16(hlen[:], uint16(len(header)))
	buf = append(buf, hlen[:]...)
	buf = append(buf, header...)

	if descr == "<f8" {
		var b [8]byte
		for _, v := range data {
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(float64(v)))
			buf = append(buf, b[:]...)
		}

		return buf
	}

	var b [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf = append(buf, b[:]...)
	}

	return buf
}
