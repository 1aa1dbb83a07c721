package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	require.Equal(t, "TXN-251019-001AB", FormatCode("TXN", "251019", 1, "AB"))
	require.Equal(t, "TXN-251019-00ZXY", FormatCode("TXN", "251019", 35, "XY"))
	require.Equal(t, "TXN-251019-0RSQQ", FormatCode("TXN", "251019", 1000, "QQ"))
}

func TestRandomAlphaNumericAlphabet(t *testing.T) {
	s := randomAlphaNumeric(16)
	require.Len(t, s, 16)
	require.NotContains(t, s, "0")
	require.NotContains(t, s, "O")
	require.NotContains(t, s, "1")
	require.NotContains(t, s, "I")
}
