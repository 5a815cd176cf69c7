package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumberRecognizedForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want int64
	}{
		{"grouped", "1,234,567", 1234567},
		{"grouped short", "1,234", 1234},
		{"korean man", "12.3만", 123000},
		{"korean man integer", "100만", 1000000},
		{"korean eok", "1.2억", 120000000},
		{"latin k", "1.2K", 1200},
		{"latin m", "1.2M", 1200000},
		{"latin m lowercase", "1.2m", 1200000},
		{"latin b", "2B", 2000000000},
		{"bare digits", "1234567", 1234567},
		{"zero", "0", 0},
		{"label noise", "재생수: 1,234,567", 1234567},
		{"unit with trailing label", "12.3만회", 123000},
		{"latin with words", "Total: 1.2M plays", 1200000},
		{"surrounding whitespace", "  42  ", 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Number(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNumberTruncatesFractionalRemainder(t *testing.T) {
	t.Parallel()

	got, err := Number("1.2345만")
	require.NoError(t, err)
	require.Equal(t, int64(12345), got)

	got, err = Number("1.9999K")
	require.NoError(t, err)
	require.Equal(t, int64(1999), got)
}

func TestNumberRejectsNonNumericInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "abc", "no numbers here", "만"} {
		_, err := Number(in)
		require.Error(t, err, "input %q", in)
		require.True(t, errors.Is(err, ErrNoNumber))
	}
}
