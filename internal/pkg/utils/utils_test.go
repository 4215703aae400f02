package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidCmdletName(t *testing.T) {
	cases := []struct {
		name  string
		valid bool
	}{
		{"Get-Process", true},
		{"get-childitem", true},
		{"ForEach-Object", true},
		{"gci", true},
		{"Microsoft.PowerShell.Core", true},
		{"Get-Process2", true},
		{"", false},
		{"-Get-Process", false},
		{"Get-Process-", false},
		{"Get Process", false},
		{"Get;Process", false},
		{"../etc/passwd", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.valid, IsValidCmdletName(tc.name), tc.name)
	}
}

func TestGenerateUUID(t *testing.T) {
	a := GenerateUUID()
	b := GenerateUUID()
	require.Len(t, a, 36)
	require.NotEqual(t, a, b)
}
