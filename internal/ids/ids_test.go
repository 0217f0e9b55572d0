package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAndValid(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.False(t, Valid("not-an-id"))
}
