package vaultcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCipherComboStringAndParseRoundTrip(t *testing.T) {
	for _, c := range []CipherCombo{SivGcm, SivCtrMac} {
		parsed, ok := ParseCipherCombo(c.String())
		require.True(t, ok)
		require.Equal(t, c, parsed)
	}
}

func TestParseCipherComboUnknown(t *testing.T) {
	_, ok := ParseCipherCombo("NOT_A_COMBO")
	require.False(t, ok)
}
