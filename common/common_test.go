package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
		err      bool
	}{
		{input: "A", expected: ChainA},
		{input: " b ", expected: ChainB},
		{input: "c", err: true},
		{input: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			chain, err := ParseChain(tt.input)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, chain)
		})
	}
}

func TestDirection(t *testing.T) {
	require.Equal(t, "A->B", Direction(ChainA, ChainB))
	require.Equal(t, ChainB, OtherChain(ChainA))
	require.Equal(t, ChainA, OtherChain(ChainB))

	for input, expected := range map[string]string{
		"A->B":   "A->B",
		"b->a":   "B->A",
		RELAY_AB: "A->B",
		RELAY_BA: "B->A",
		"AB":     "A->B",
	} {
		direction, err := ParseDirection(input)
		require.NoError(t, err, input)
		require.Equal(t, expected, direction, input)
	}
	_, err := ParseDirection("A->A")
	require.Error(t, err)
}
