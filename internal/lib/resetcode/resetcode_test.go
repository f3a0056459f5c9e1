package resetcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)
}

func TestHashDeterministic(t *testing.T) {
	assert.Equal(t, Hash("123456"), Hash("123456"))
	assert.NotEqual(t, Hash("123456"), Hash("123457"))
	assert.Len(t, Hash("123456"), 64)
	assert.NotContains(t, Hash("123456"), "123456")
}
