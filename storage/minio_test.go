package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("512 B", FormatSize(512))
	assert.Equal("1.00 KB", FormatSize(1024))
	assert.Equal("1.50 MB", FormatSize(1536*1024))
}
