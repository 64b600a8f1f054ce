package instrument

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"runtime"
	"strings"
)

// TracerNamed is an interface that allows types to customize their
// name shown in traces and logs.
type TracerNamed interface {
	TracerName() string
}

func tracerName(obj interface{}) string {
	switch t := obj.(type) {
	case string:
		return t
	case TracerNamed:
		return t.TracerName()
	case nil:
		return ""
	}

	switch obj {
	case os.Stdin:
		return "os.Stdin"
	case os.Stdout:
		return "os.Stdout"
	case os.Stderr:
		return "os.Stderr"
	case io.Discard:
		return "io.Discard"
	default:
		return fmt.Sprintf("%T", obj)
	}
}

// fmtSpanName appends the name of the given function (spanName) to the tracer
// name, if set.
func fmtSpanName(tracerName, spanName string) string {
	if len(tracerName) != 0 && len(spanName) != 0 {
		return tracerName + "." + spanName
	}
	// As either (or both) tracerName and spanName are empty strings, we can add them together
	return tracerName + spanName
}

// FuncName returns the name of the Go function fn, qualified by its package
// name, e.g. "bytes.NewReader" or "main.(*Server).Serve". It returns an empty
// string if fn is not a non-nil function.
//
// This is handy for not repeating the name of an instrumented function:
//
//	instrument.Func[int](instrument.FuncName(fetch))
func FuncName(fn interface{}) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	name := rf.Name()
	// Only keep the last element of the package path.
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	// Method values are suffixed with "-fm".
	return strings.TrimSuffix(name, "-fm")
}
