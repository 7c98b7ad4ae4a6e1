// Package formatting provides parsing and formatting helpers for configuration
// values and model output.
package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders a byte count with base-1024 units, e.g. "20 MB".
// Negative precision values are clamped to zero.
func FormatBytes(n int64, precision int) string {
	if n <= 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses a byte size such as "20MB", "512 KiB" or "4096" into a
// byte count. Units are base-1024 and matched case-insensitively; the binary
// spelling (KiB, MiB) and the bare letter (K, M) are accepted as aliases.
// A bare number is treated as bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	idx, err := unitIndex(unit)
	if err != nil {
		return 0, err
	}

	return int64(value * math.Pow(1024, float64(idx))), nil
}

func unitIndex(unit string) (int, error) {
	u := strings.ToUpper(unit)
	switch {
	case u == "":
		return 0, nil
	case len(u) == 3 && strings.HasSuffix(u, "IB"):
		u = u[:1] + "B"
	case len(u) == 1 && u != "B":
		u += "B"
	}

	idx := slices.Index(units, u)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}
	return idx, nil
}
