package intutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntUtils(t *testing.T) {
	assert.Equal(t, -2, Min(3, -2, 5))
	assert.Equal(t, 5, Max(3, -2, 5))
	assert.Equal(t, 24, Prod(2, 3, 4))
	assert.Equal(t, 1, Prod())
}
