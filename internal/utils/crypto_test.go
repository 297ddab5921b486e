package utils

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumRewinds(t *testing.T) {
	r := strings.NewReader("hello")

	sum, err := Checksum(r)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(rest))
}
