package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSizeString(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "10mb", want: "10485760", ok: true},
		{input: "10MB", want: "10485760", ok: true},
		{input: "1 kb", want: "1024", ok: true},
		{input: "1.5kb", want: "1536", ok: true},
		{input: "512", want: "512", ok: true},
		{input: "512b", want: "512", ok: true},
		{input: "2tb", want: "2199023255552", ok: true},
		{input: "abc", ok: false},
		{input: "", ok: false},
		{input: "10xb", ok: false},
		{input: "-5mb", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSizeString(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSize(t *testing.T) {
	n, ok := ParseSize("1gb")
	assert.True(t, ok)
	assert.Equal(t, int64(1<<30), n)
}

func TestParseSizeRejectsOverflow(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{input: "8388607tb", want: math.MaxInt64 - (1<<40 - 1), ok: true},
		{input: "8388608tb", ok: false},
		{input: "9223372036854775807", ok: false},
		{input: "9223372036854775808", ok: false},
		{input: "1e30", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSize(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}

	_, ok := ParseSizeString("8388608tb")
	assert.False(t, ok)
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{input: 0, want: "0 B"},
		{input: 512, want: "512 B"},
		{input: 1023, want: "1023 B"},
		{input: 1024, want: "1.00 KB"},
		{input: 1536, want: "1.50 KB"},
		{input: 1048576, want: "1.00 MB"},
		{input: 1073741824, want: "1.00 GB"},
		{input: 1099511627776, want: "1.00 TB"},
		{input: 1024 * 1099511627776, want: "1024.00 TB"},
		{input: -1, want: "0 B"},
		{input: math.NaN(), want: "0 B"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.input), "input %v", tt.input)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{input: 0, want: "0 Bytes"},
		{input: 512, want: "512 Bytes"},
		{input: 1024, want: "1.00 KB"},
		{input: 1073741824, want: "1.00 GB"},
		{input: -42, want: "0 Bytes"},
		{input: math.NaN(), want: "0 Bytes"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.input), "input %v", tt.input)
	}
}

func TestFormattersDivergeOnlyOnByteLabel(t *testing.T) {
	assert.NotEqual(t, FormatFileSize(10), FormatBytes(10))
	assert.Equal(t, FormatFileSize(4096), FormatBytes(4096))
}
