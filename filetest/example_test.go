package filetest

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTester(t *testing.T) {
	g := New(t)
	// Deferred functions run last-in first-out: Update writes the golden
	// file before Assert reads it, so this sample always passes. Real tests
	// only Assert, and rely on the -update flag for writing.
	defer g.Assert()
	defer g.Update()

	w := g.Add("calls.txt").
		Filter(collapseSpaces).
		Filter(bytes.TrimSpace).
		Writer()

	require.NoError(t, writeCalls(w))
}

func collapseSpaces(in []byte) []byte {
	return bytes.ReplaceAll(in, []byte("  "), []byte(" "))
}

func writeCalls(w io.Writer) error {
	_, err := w.Write([]byte(`

f()  => ()
g()  => 1

`))
	return err
}
