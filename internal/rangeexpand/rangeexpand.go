// Package rangeexpand provides a reference implementation of the
// planner's RangeExpander capability. It is not part of the core's
// contract — the core only depends on the RangeExpander function type the
// planner package declares — but a host needs some concrete expander to
// turn a Regex SliceValue into a list of Ranges, and this one covers the
// common case of a literal numeric value or a `lo-hi` literal range
// pattern without pulling a regex-to-automaton-to-intervals library into
// the module.
package rangeexpand

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/shardbit/shardbit/internal/index"
)

var (
	literalPattern = regexp.MustCompile(`^\d+$`)
	rangePattern   = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// Expand recognizes two literal pattern shapes: a single unsigned integer
// (expanded to the single-value range [n, n]) and a `lo-hi` pair
// (expanded to [lo, hi]). Any other pattern is reported as unsupported;
// a host that needs real regex-over-value-domain expansion should supply
// its own RangeExpander grounded on its actual value encoding.
func Expand(pattern string) ([]index.Range, error) {
	if literalPattern.MatchString(pattern) {
		n, err := strconv.ParseUint(pattern, 10, 64)
		if err != nil {
			return nil, err
		}
		return []index.Range{{Lo: n, Hi: n}}, nil
	}

	if m := rangePattern.FindStringSubmatch(pattern); m != nil {
		lo, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return nil, err
		}
		return []index.Range{{Lo: lo, Hi: hi}}, nil
	}

	return nil, fmt.Errorf("rangeexpand: unsupported pattern %q", pattern)
}
