package filetest

import (
	"bytes"
	"io"
	"os"
	"unicode"
)

// ExampleStdout writes to os.Stdout, trimming trailing spaces from every
// line. Example functions compare their output with "// Output:" comments,
// from which gofmt strips trailing spaces, so loggers padding lines with
// spaces (like stdr) need this wrapper in examples.
const ExampleStdout = exampleWriter(0)

var _ io.Writer = ExampleStdout

type exampleWriter int

func (exampleWriter) Write(p []byte) (int, error) {
	lines := bytes.Split(p, []byte{'\n'})
	for i := range lines {
		lines[i] = bytes.TrimRightFunc(lines[i], unicode.IsSpace)
	}
	if _, err := os.Stdout.Write(bytes.Join(lines, []byte{'\n'})); err != nil {
		return 0, err
	}
	return len(p), nil
}
