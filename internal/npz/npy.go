package npz

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const npyMagic = "\x93NUMPY"

type npyHeader struct {
	descr   string
	fortran bool
	shape   []int64
}

var (
	descrPattern   = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	fortranPattern = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapePattern   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// parseNPY splits a serialized .npy file into its parsed header and payload.
func parseNPY(raw []byte) (npyHeader, []byte, error) {
	if len(raw) < len(npyMagic)+4 {
		return npyHeader{}, nil, fmt.Errorf("npy file too short (%d bytes)", len(raw))
	}

	if string(raw[:len(npyMagic)]) != npyMagic {
		return npyHeader{}, nil, errors.New("bad npy magic")
	}

	var headerLen, headerStart int

	switch major := raw[6]; major {
	case 1:
		if len(raw) < 10 {
			return npyHeader{}, nil, errors.New("truncated npy v1 header")
		}

		headerLen = int(binary.LittleEndian.Uint16(raw[8:10]))
		headerStart = 10
	case 2, 3:
		if len(raw) < 12 {
			return npyHeader{}, nil, errors.New("truncated npy v2 header")
		}

		headerLen = int(binary.LittleEndian.Uint32(raw[8:12]))
		headerStart = 12
	default:
		return npyHeader{}, nil, fmt.Errorf("unsupported npy version %d", major)
	}

	headerEnd := headerStart + headerLen
	if headerEnd > len(raw) {
		return npyHeader{}, nil, fmt.Errorf("npy header length %d exceeds file size %d", headerLen, len(raw))
	}

	hdr, err := parseHeaderDict(string(raw[headerStart:headerEnd]))
	if err != nil {
		return npyHeader{}, nil, err
	}

	return hdr, raw[headerEnd:], nil
}

// parseHeaderDict extracts the three fixed keys from the Python dict literal
// numpy writes as the array header.
func parseHeaderDict(s string) (npyHeader, error) {
	m := descrPattern.FindStringSubmatch(s)
	if m == nil {
		return npyHeader{}, errors.New("npy header missing descr")
	}

	hdr := npyHeader{descr: m[1]}

	fm := fortranPattern.FindStringSubmatch(s)
	if fm == nil {
		return npyHeader{}, errors.New("npy header missing fortran_order")
	}

	hdr.fortran = fm[1] == "True"

	sm := shapePattern.FindStringSubmatch(s)
	if sm == nil {
		return npyHeader{}, errors.New("npy header missing shape")
	}

	for _, part := range strings.Split(sm[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		d, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return npyHeader{}, fmt.Errorf("bad npy shape dimension %q", part)
		}

		if d < 0 {
			return npyHeader{}, fmt.Errorf("negative npy shape dimension %d", d)
		}

		hdr.shape = append(hdr.shape, d)
	}

	return hdr, nil
}

func decodeFloats(hdr npyHeader, data []byte) ([]float32, error) {
	if hdr.fortran {
		return nil, errors.New("fortran order not supported")
	}

	count, err := elementCount(hdr.shape)
	if err != nil {
		return nil, err
	}

	n := int(count)

	switch hdr.descr {
	case "<f4":
		if len(data) < n*4 {
			return nil, fmt.Errorf("need %d bytes for <f4, got %d", n*4, len(data))
		}

		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}

		return out, nil
	case "<f8":
		if len(data) < n*8 {
			return nil, fmt.Errorf("need %d bytes for <f8, got %d", n*8, len(data))
		}

		out := make([]float32, n)
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:])))
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", hdr.descr)
	}
}

func elementCount(shape []int64) (int64, error) {
	total := int64(1)

	for _, d := range shape {
		if d == 0 {
			return 0, nil
		}

		if total > math.MaxInt64/d {
			return 0, fmt.Errorf("shape %v overflows element count", shape)
		}

		total *= d
	}

	return total, nil
}
