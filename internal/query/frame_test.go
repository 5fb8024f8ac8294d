package query

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteFrame(&buf, 0x0102030405060708, [][]byte{[]byte("ab"), nil, []byte("c")})
	require.NoError(t, err)
	require.Equal(t, 11, n)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 'a', 'b', 'c'}, buf.Bytes())
}

func TestWriteFrameStopsOnError(t *testing.T) {
	s := &memSink{failOnWrite: 2}
	n, err := WriteFrame(s, 1, [][]byte{[]byte("a"), []byte("b")})
	require.ErrorIs(t, err, errBrokenPipe)
	require.Equal(t, FrameHeaderSize, n)
	require.Equal(t, 2, s.writes)
}
