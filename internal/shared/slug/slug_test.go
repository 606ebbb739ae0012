package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromTitle(t *testing.T) {
	cases := map[string]string{
		"Go for Backend Engineers": "go-for-backend-engineers",
		"  C++ & Rust -- 101 ":     "c-rust-101",
		"!!!":                      "course",
		"":                         "course",
	}
	for in, want := range cases {
		assert.Equal(t, want, FromTitle(in), in)
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "go-basics-a1b2", WithSuffix("go-basics", "a1b2", 64))

	long := strings.Repeat("x", 80)
	got := WithSuffix(long, "a1b2", 20)
	assert.Len(t, got, 20)
	assert.True(t, strings.HasSuffix(got, "-a1b2"))
}
