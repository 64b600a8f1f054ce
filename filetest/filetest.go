// Package filetest verifies content written to io.Writers, for example the
// output of a call logger, against golden files under testdata/.
package filetest

import (
	"bytes"
	"io"
	"sort"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// New wraps goldie.New, returning a *Tester for t.
func New(t *testing.T, opts ...goldie.Option) *Tester { //nolint:thelper
	return &Tester{
		G:     goldie.New(t, opts...),
		T:     t,
		Files: make(map[string]*Target),
	}
}

// Tester registers golden files and the writers that should reproduce them.
type Tester struct {
	G *goldie.Goldie
	T *testing.T
	// Files maps a golden file name to the buffer capturing its content.
	Files map[string]*Target
}

// Target buffers writes for one golden file. Filters are applied in order on
// the buffered content before it is compared.
type Target struct {
	Buffer  *bytes.Buffer
	Filters []Filter
}

// Filter transforms captured content before comparison.
type Filter func([]byte) []byte

// Add registers a new golden file called name. An earlier Target with the
// same name is replaced.
func (g *Tester) Add(name string) *Target {
	b := &Target{Buffer: new(bytes.Buffer)}
	g.Files[name] = b
	return b
}

// Filter appends filter to the Target's filters.
func (b *Target) Filter(filter Filter) *Target {
	b.Filters = append(b.Filters, filter)
	return b
}

// Writer returns the io.Writer writing into the Target's buffer.
func (b *Target) Writer() io.Writer { return b.Buffer }

func (g *Tester) do(fn func(*testing.T, string, []byte)) {
	names := make([]string, 0, len(g.Files))
	for name := range g.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := g.Files[name]
		content := target.Buffer.Bytes()
		for _, filter := range target.Filters {
			content = filter(content)
		}

		g.T.Run(name, func(t *testing.T) {
			fn(t, name, content)
		})
	}
}

// Assert verifies that every golden file matches what was written to its
// Target, each file in its own sub-test.
//
// Running "go test . -update" rewrites the golden files instead.
func (g *Tester) Assert() { g.do(g.G.Assert) }

// Update writes the captured content to the golden files.
func (g *Tester) Update() {
	g.do(func(t *testing.T, name string, content []byte) { //nolint:thelper
		require.NoError(t, g.G.Update(t, name, content))
	})
}
