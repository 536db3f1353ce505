package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tcs := []struct {
		input       string
		expected    time.Duration
		expectedErr bool
	}{
		{input: "10s", expected: 10 * time.Second},
		{input: "1500ms", expected: 1500 * time.Millisecond},
		{input: "1h", expected: time.Hour},
		{input: "abc", expectedErr: true},
	}
	for _, tc := range tcs {
		t.Run(tc.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tc.input))
			if tc.expectedErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, d.Duration)
		})
	}
}

func TestDurationMarshalJSON(t *testing.T) {
	b, err := NewDuration(1500 * time.Millisecond).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"1.5s"`, string(b))
}
