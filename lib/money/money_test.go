package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text    string
		want    float64
		wantErr bool
	}{
		{text: "$10.00", want: 10},
		{text: "  $1,234.50 ", want: 1234.5},
		{text: "£15.5", want: 15.5},
		{text: "29.00€", want: 29},
		{text: "Total:", wantErr: true},
		{text: "1.2.3", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseAmount(tc.text)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestExpectTotal(t *testing.T) {
	expected, err := ExpectTotal([]string{"$10.00", "$15.50"}, "$27.50", FlatShipping)
	require.NoError(t, err)
	require.Equal(t, 27.5, expected)

	_, err = ExpectTotal([]string{"$10.00", "$15.50"}, "$25.50", FlatShipping)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, 27.5, mismatch.Expected)
	require.Equal(t, 25.5, mismatch.Displayed)
	require.EqualError(t, err, "expected total 27.50, displayed 25.50")

	_, err = ExpectTotal([]string{"$10.00", "n/a"}, "$12.00", FlatShipping)
	require.ErrorContains(t, err, `no amount in "n/a"`)
}

func TestSumEmpty(t *testing.T) {
	total, err := Sum(nil)
	require.NoError(t, err)
	require.Zero(t, total)
}
