package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEmptyReturnsNoChunks(t *testing.T) {
	assert.Nil(t, Split(""))
}

func TestSplitReturnsSingleChunkAtIndexZero(t *testing.T) {
	chunks := Split("hello world")
	assert := assert.New(t)
	assert.Len(chunks, 1)
	assert.Equal(0, chunks[0].Index)
	assert.Equal("hello world", chunks[0].Text)
}
