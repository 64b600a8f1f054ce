package logcall

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// JSONSink writes every Record as one JSON object per line to an io.Writer.
// It is safe for concurrent use.
type JSONSink struct {
	mu  sync.Mutex
	w   io.Writer
	api jsoniter.API
}

var _ Sink = &JSONSink{}

// NewJSONSink returns a *JSONSink writing to w. Map keys, that is the
// argument names, are sorted.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, api: jsonAPI}
}

//nolint:gochecknoglobals
var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	CaseSensitive:          true,
}.Froze()

type jsonRecord struct {
	Function string                 `json:"function"`
	CallID   string                 `json:"callID,omitempty"`
	Phase    Phase                  `json:"phase"`
	Time     string                 `json:"time,omitempty"`
	Args     map[string]interface{} `json:"args,omitempty"`
	Value    interface{}            `json:"return,omitempty"`
	Err      string                 `json:"error,omitempty"`
}

// Emit implements Sink. Values that can't be marshalled are written using
// their fmt "%v" representation.
func (s *JSONSink) Emit(_ context.Context, rec Record) {
	obj := jsonRecord{
		Function: rec.Function,
		CallID:   rec.CallID,
		Phase:    rec.Phase,
		Args:     argsMap(rec.Args),
		Value:    rec.Value,
	}
	if !rec.Time.IsZero() {
		obj.Time = rec.Time.UTC().Format(time.RFC3339Nano)
	}
	if rec.Err != nil {
		obj.Err = rec.Err.Error()
	}

	out, err := s.api.Marshal(obj)
	if err != nil {
		obj.Value = fmt.Sprintf("%v", obj.Value)
		for k, v := range obj.Args {
			obj.Args[k] = fmt.Sprintf("%v", v)
		}
		if out, err = s.api.Marshal(obj); err != nil {
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(out, '\n'))
}

func argsMap(kv []interface{}) map[string]interface{} {
	if len(kv) == 0 {
		return nil
	}
	m := make(map[string]interface{}, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprintf("%v", kv[i])
		if i+1 < len(kv) {
			m[key] = kv[i+1]
		} else {
			m[key] = nil
		}
	}
	return m
}
