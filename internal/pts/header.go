package pts

import (
	"bytes"
	"fmt"
	"path"
	"strings"
)

const (
	formatMarker       = 0x03
	bitcodeSearchLimit = 0x100
	versionBlockPos    = 0x1f

	MinVersion = 5
	MaxVersion = 12
)

var (
	bitcode = []byte("0010111100101011")

	sessionExtensions = []string{".pts", ".ptx", ".ptf"}
)

// checkFormat verifies the clear-text format marker of a decoded buffer.
func checkFormat(buf []byte) error {
	if len(buf) < HeaderSize {
		return formatErr(ErrInvalidFormat, 0, fmt.Sprintf("at least %d bytes", HeaderSize), fmt.Sprintf("%d bytes", len(buf)))
	}
	if buf[0] != formatMarker {
		return formatErr(ErrInvalidFormat, 0, fmt.Sprintf("marker 0x%02x", formatMarker), fmt.Sprintf("0x%02x", buf[0]))
	}
	limit := min(len(buf), bitcodeSearchLimit)
	if at := bytes.Index(buf[:limit], bitcode); at != 1 {
		return formatErr(ErrInvalidFormat, 1, "bitcode at offset 1", fmt.Sprintf("offset %d", at))
	}
	return nil
}

// readVersion finds the session version in the block at 0x1f, falling back
// to fixed header bytes used by older writers.
func readVersion(r Reader, buf []byte) (int, error) {
	if blk, ok := blockAt(buf, r.BigEndian, versionBlockPos); ok {
		off := int(blk.Offset)
		switch blk.ContentType {
		case CTInfoVersion:
			if n, err := r.U32(off + 3); err == nil {
				if v, err := r.U32(off + 3 + int(n) + 8); err == nil {
					return gateVersion(int(v), off)
				}
			}
		case CTInfoPathOfSession:
			if v, err := r.U32(off + 20); err == nil {
				return gateVersion(2+int(v), off)
			}
		}
	}

	var v int
	if len(buf) > 0x40 {
		v = int(buf[0x40])
	}
	if v == 0 && len(buf) > 0x3d {
		v = int(buf[0x3d])
	}
	if v == 0 && len(buf) > 0x3a {
		v = int(buf[0x3a]) + 2
	}
	return gateVersion(v, versionBlockPos)
}

func gateVersion(v, offset int) (int, error) {
	if v < MinVersion || v > MaxVersion {
		return v, formatErr(ErrUnsupportedVersion, offset, fmt.Sprintf("%d..%d", MinVersion, MaxVersion), fmt.Sprint(v))
	}
	return v, nil
}

// IsSessionFilename reports whether name carries a session file extension.
func IsSessionFilename(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range sessionExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// header walks blocks in file order and stops once the product version,
// sample rate and session name are all known. The session name is only
// looked for in top-level blocks.
func (x *extractor) header() HeaderInfo {
	var h HeaderInfo
	for i := range x.f.Blocks {
		id := BlockID(i)
		blk := x.f.Block(id)
		switch blk.ContentType {
		case CTInfoProductVersion:
			if h.ProductVersion != "" {
				break
			}
			if s, _, err := x.stringAt(id, 2); err == nil {
				h.ProductVersion = s
				x.sugar.Debugw("product version", "value", s, "offset", blk.Offset)
			}
		case CTInfoSampleRate:
			if h.SampleRate != 0 {
				break
			}
			if v, err := x.r.U32(int(blk.Offset) + 4); err == nil {
				h.SampleRate = int32(v)
				x.sugar.Debugw("sample rate", "value", h.SampleRate, "offset", blk.Offset)
			}
		default:
			if h.SessionName != "" || blk.Parent != NoParent {
				break
			}
			if s, _, err := x.stringAt(id, 2); err == nil && IsSessionFilename(s) {
				h.SessionName = s
				x.sugar.Debugw("session name", "value", s, "offset", blk.Offset)
			}
		}
		if h.SessionName != "" && h.SampleRate > 0 && h.ProductVersion != "" {
			break
		}
	}
	return h
}
