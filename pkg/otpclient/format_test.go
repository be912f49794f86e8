package otpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanInput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12 34-56abc", "123456"},
		{"123456", "123456"},
		{"1234567890", "123456"}, // truncated to six
		{"abc", ""},
		{"", ""},
		{"  9 8 7 6 5 4  ", "987654"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanInput(tc.in), "input %q", tc.in)
	}
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("123456"))
	assert.True(t, ValidFormat("123 456")) // display form round-trips
	assert.False(t, ValidFormat("12345"))
	assert.False(t, ValidFormat("1234567"))
	assert.False(t, ValidFormat("12345a"))
	assert.False(t, ValidFormat(""))
}

func TestFormatForDisplay(t *testing.T) {
	assert.Equal(t, "123 456", FormatForDisplay("123456"))
	assert.Equal(t, "12345", FormatForDisplay("12345")) // not six digits, untouched
}

func TestDisplayRoundTrip(t *testing.T) {
	display := FormatForDisplay("123456")
	assert.True(t, ValidFormat(display))
	assert.Equal(t, "123456", CleanInput(display))
}
