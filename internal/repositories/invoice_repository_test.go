package repositories

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoiceNo(t *testing.T) {
	no := newInvoiceNo(42)

	require.True(t, strings.HasPrefix(no, "INV42-"), "got %q", no)
	suffix, err := strconv.Atoi(strings.TrimPrefix(no, "INV42-"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, suffix, 1000)
	assert.LessOrEqual(t, suffix, 9990)
}

func TestNewInvoiceNoUniquePerSequence(t *testing.T) {
	// distinct counter values can never collide, whatever the suffix
	seen := make(map[string]struct{})
	for seq := int64(1); seq <= 500; seq++ {
		no := newInvoiceNo(seq)
		prefix, _, found := strings.Cut(no, "-")
		require.True(t, found)
		_, dup := seen[prefix]
		require.False(t, dup, "sequence prefix %q repeated", prefix)
		seen[prefix] = struct{}{}
	}
}
