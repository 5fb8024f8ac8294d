package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDescriptor(t *testing.T) {
	d, err := Decode(`{"subject":"S","keys":[{"sequence":"1"},{"sequence":18446744073709551615}]}`)
	require.NoError(t, err)
	require.Equal(t, "S", d.Subject)
	require.Equal(t, keys(1, 18446744073709551615), d.Keys)
	require.False(t, d.Empty())
}

func TestDecodeNoOpInputs(t *testing.T) {
	for _, raw := range []string{"", "   ", "null"} {
		d, err := Decode(raw)
		require.NoError(t, err, raw)
		require.True(t, d.Empty(), raw)
	}
	d, err := Decode(`{"keys":[{"sequence":"1"}]}`)
	require.NoError(t, err)
	require.True(t, d.Empty(), "missing subject")
}

func TestDecodeMalformed(t *testing.T) {
	for _, raw := range []string{`{"subject":`, `[1,2]`, `"S"`, `{"subject":"S","keys":[{"sequence":"-1"}]}`, `{"subject":"S","keys":[{"sequence":"x"}]}`} {
		d, err := Decode(raw)
		require.Error(t, err, raw)
		require.Nil(t, d, raw)
	}
}

func TestDescriptorStringRoundTrips(t *testing.T) {
	d := &Descriptor{Subject: "S", Keys: keys(7)}
	require.Equal(t, `{"subject":"S","keys":[{"sequence":"7"}]}`, d.String())
	var nilDesc *Descriptor
	require.Equal(t, "<nil>", nilDesc.String())
}
