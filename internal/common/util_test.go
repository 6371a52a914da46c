package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "zero", size: 0},
		{name: "token sized", size: 32},
		{name: "odd size", size: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MakeRandHexString(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.size*2)

			b, err := hex.DecodeString(s)
			require.NoError(t, err)
			assert.Len(t, b, tt.size)
		})
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		s, err := MakeRandHexString(32)
		require.NoError(t, err)
		_, dup := seen[s]
		require.False(t, dup, "duplicate random token %q", s)
		seen[s] = struct{}{}
	}
}

func TestGenerateRandByteArray(t *testing.T) {
	buf := GenerateRandByteArray(24)
	require.NotNil(t, buf)
	assert.Len(t, buf, 24)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("hunter2")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, len(buf)), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
