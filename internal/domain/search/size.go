package search

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var sizePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(b|kb|mb|gb|tb)?$`)

var unitPowers = map[string]float64{
	"":   0,
	"b":  0,
	"kb": 1,
	"mb": 2,
	"gb": 3,
	"tb": 4,
}

// ParseSizeString converts "10mb" style input into a decimal byte count.
// Fractional results are truncated to whole bytes.
func ParseSizeString(s string) (string, bool) {
	n, ok := ParseSize(s)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// ParseSize is ParseSizeString returning the byte count as an integer.
func ParseSize(s string) (int64, bool) {
	match := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	bytes := value * math.Pow(1024, unitPowers[strings.ToLower(match[2])])
	if bytes >= math.MaxInt64 {
		return 0, false
	}
	return int64(bytes), true
}

var fileSizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders object sizes: "0 B", "512 B", "1.00 KB".
func FormatFileSize(bytes float64) string {
	return formatSize(bytes, "B", "0 B")
}

// FormatBytes renders bucket totals: "0 Bytes", "512 Bytes", "1.00 KB".
// The byte label intentionally differs from FormatFileSize; both forms are exposed
// by the API.
func FormatBytes(bytes float64) string {
	return formatSize(bytes, "Bytes", "0 Bytes")
}

func formatSize(bytes float64, byteLabel, zero string) string {
	if math.IsNaN(bytes) || math.IsInf(bytes, 0) || bytes <= 0 {
		return zero
	}

	i := 0
	for bytes >= 1024 && i < len(fileSizeUnits)-1 {
		bytes /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%s %s", strconv.FormatFloat(math.Floor(bytes), 'f', -1, 64), byteLabel)
	}
	return fmt.Sprintf("%.2f %s", bytes, fileSizeUnits[i])
}
