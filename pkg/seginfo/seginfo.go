// Package seginfo names and parses the on-disk files ioadapter uses to
// persist individual Segments, one file per (partition, bucket, field,
// value, segment-offset) tuple. The naming scheme is a direct descendant
// of this engine's sequence-numbered segment file convention, adapted
// from a rotating append-only log's NNNNN sequence IDs to the core's
// sparse, randomly-addressed segment offsets; there is no rotation here,
// so the timestamp component the original format carried is dropped.
//
// Filename format: seg_<offset 20-digit zero-padded>.bin[.zst]
package seginfo

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	plainExt      = ".bin"
	compressedExt = ".bin.zst"
	prefix        = "seg_"
)

// GenerateName returns the filename for offset, with the .zst suffix
// when compressed is true.
func GenerateName(offset uint64, compressed bool) string {
	ext := plainExt
	if compressed {
		ext = compressedExt
	}
	return fmt.Sprintf("%s%020d%s", prefix, offset, ext)
}

// ParseName extracts the offset and compression flag from a filename
// produced by GenerateName. It returns false if name doesn't match the
// expected convention.
func ParseName(name string) (offset uint64, compressed bool, ok bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false, false
	}
	rest := strings.TrimPrefix(name, prefix)

	switch {
	case strings.HasSuffix(rest, compressedExt):
		compressed = true
		rest = strings.TrimSuffix(rest, compressedExt)
	case strings.HasSuffix(rest, plainExt):
		rest = strings.TrimSuffix(rest, plainExt)
	default:
		return 0, false, false
	}

	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return n, compressed, true
}
