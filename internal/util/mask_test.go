package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCode(t *testing.T) {
	t.Run("masks the tail of a full code", func(t *testing.T) {
		assert.Equal(t, "ABCD-****", MaskCode("ABCD-EFGH"))
	})

	t.Run("masks short codes entirely", func(t *testing.T) {
		assert.Equal(t, "****", MaskCode("AB"))
		assert.Equal(t, "****", MaskCode(""))
	})
}
