package progressbar

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewManualProgressBarTo(&out, 10, 4)

	p.Increment()
	assert.Equal(t, 0.25, p.Progress())
	assert.True(t, strings.HasPrefix(p.String(""), "|██        |"))

	for i := 0; i < 10; i++ {
		p.Increment()
	}
	assert.Equal(t, 1.0, p.Progress())
	assert.Contains(t, p.String("loss=1"), "[100.00%")
	assert.True(t, strings.HasSuffix(p.String("loss=1"), " loss=1"))

	p.Display("done")
	p.Close()
	assert.Contains(t, out.String(), "done\n")
}
