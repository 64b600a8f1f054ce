package logcall_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"github.com/luxas/deklarative/instrument/async"
	"github.com/luxas/deklarative/instrument/logcall"
	"github.com/luxas/deklarative/instrument/logcall/logcallfakes"
)

var errSample = errors.New("sample failure")

func one(context.Context) (int, error) { return 1, nil }

func advanceAll[T any](t *testing.T, c async.Computation[T]) async.Poll[T] {
	t.Helper()
	for {
		p, err := c.Advance(context.Background())
		require.NoError(t, err)
		if p.Complete() {
			return p
		}
	}
}

func TestWrap_synchronous(t *testing.T) {
	rec := logcall.NewRecorder()
	b := logcall.Call("f").WithSink(rec).WithCallID("call-1").WithArgs("x", 2)

	p := advanceAll(t, logcall.Wrap(b, async.Func(one)))
	assert.Equal(t, 1, p.Value())

	got := rec.Records()
	for i := range got {
		got[i].Time = time.Time{}
	}
	want := []logcall.Record{
		{Function: "f", CallID: "call-1", Phase: logcall.PhaseEntry, Args: []interface{}{"x", 2}},
		{Function: "f", CallID: "call-1", Phase: logcall.PhaseExit, Value: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestWrap_suspensionsAreNotLogged(t *testing.T) {
	rec := logcall.NewRecorder()
	advances := 0
	inner := async.PollFunc(func(context.Context) (async.Poll[int], error) {
		advances++
		if advances <= 3 {
			return async.Suspended[int](async.Ready()), nil
		}
		return async.Succeeded(1), nil
	})
	c := logcall.Wrap(logcall.Call("g").WithSink(rec), inner)

	ctx := context.Background()
	p, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, p.Complete())
	assert.Equal(t, []logcall.Phase{logcall.PhaseEntry}, rec.Phases())

	p = advanceAll(t, c)
	assert.Equal(t, 1, p.Value())
	assert.Equal(t, []logcall.Phase{logcall.PhaseEntry, logcall.PhaseExit}, rec.Phases())
}

func TestWrap_failureIsPassedOn(t *testing.T) {
	rec := logcall.NewRecorder()
	c := logcall.Wrap(logcall.Call("h").WithSink(rec), async.Fail[string](errSample))

	p := advanceAll(t, c)
	assert.Same(t, errSample, p.Err())

	recs := rec.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, logcall.PhaseError, recs[1].Phase)
	assert.Same(t, errSample, recs[1].Err)
	assert.Equal(t, "h() => error: sample failure", recs[1].String())
}

func TestWrap_invalidState(t *testing.T) {
	rec := logcall.NewRecorder()
	c := logcall.Wrap(logcall.Call("f").WithSink(rec), async.Func(one))
	advanceAll(t, c)

	_, err := c.Advance(context.Background())
	assert.ErrorIs(t, err, async.ErrInvalidState)
	assert.Len(t, rec.Records(), 2)
}

func TestWrap_innerFault(t *testing.T) {
	ctx := context.Background()
	inner := async.Value(1)
	_, err := inner.Advance(ctx)
	require.NoError(t, err)

	rec := logcall.NewRecorder()
	c := logcall.Wrap(logcall.Call("f").WithSink(rec), inner)
	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, async.ErrInvalidState)

	recs := rec.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, logcall.PhaseError, recs[1].Phase)
	assert.ErrorIs(t, recs[1].Err, async.ErrInvalidState)
}

func TestWrap_sinkPanicIsIsolated(t *testing.T) {
	sink := &logcallfakes.FakeSink{}
	sink.EmitCalls(func(context.Context, logcall.Record) { panic("sink is broken") })

	var recovered []interface{}
	b := logcall.Call("f").WithSink(sink).OnSinkPanic(func(_ logcall.Record, r interface{}) {
		recovered = append(recovered, r)
	})

	p := advanceAll(t, logcall.Wrap(b, async.Func(one)))
	assert.Equal(t, 1, p.Value())
	assert.NoError(t, p.Err())

	assert.Equal(t, 2, sink.EmitCallCount())
	_, entry := sink.EmitArgsForCall(0)
	_, exit := sink.EmitArgsForCall(1)
	assert.Equal(t, logcall.PhaseEntry, entry.Phase)
	assert.Equal(t, logcall.PhaseExit, exit.Phase)
	assert.Equal(t, []interface{}{"sink is broken", "sink is broken"}, recovered)
}

func TestWrap_timestamps(t *testing.T) {
	clock := clockz.NewFakeClock()
	rec := logcall.NewRecorder()

	suspended := false
	inner := async.PollFunc(func(context.Context) (async.Poll[int], error) {
		if !suspended {
			suspended = true
			clock.Advance(time.Second)
			return async.Suspended[int](async.Ready()), nil
		}
		return async.Succeeded(1), nil
	})
	advanceAll(t, logcall.Wrap(logcall.Call("g").WithSink(rec).WithClock(clock), inner))

	recs := rec.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, time.Second, recs[1].Time.Sub(recs[0].Time))
}

func TestWrap_copiesBuilder(t *testing.T) {
	rec := logcall.NewRecorder()
	b := logcall.Call("f").WithSink(rec).WithCallID("call-1")
	c := logcall.Wrap(b, async.Func(one))
	b.WithCallID("call-2")

	advanceAll(t, c)
	for _, r := range rec.Records() {
		assert.Equal(t, "call-1", r.CallID)
	}
	assert.Equal(t, "f", b.Name())
}

func funcrLogger(lines *[]string) logr.Logger {
	return funcr.New(func(prefix, args string) {
		*lines = append(*lines, strings.TrimSpace(prefix+" "+args))
	}, funcr.Options{})
}

func TestLogrSink_loggerFromContext(t *testing.T) {
	var lines []string
	ctx := logr.NewContext(context.Background(), funcrLogger(&lines))

	c := logcall.Wrap(logcall.Call("f").WithCallID("call-1"), async.Func(one))
	p, err := c.Advance(ctx)
	require.NoError(t, err)
	require.True(t, p.Complete())

	assert.Equal(t, []string{
		`f "level"=0 "msg"="entering call" "phase"="entry" "call-id"="call-1"`,
		`f "level"=0 "msg"="call returned" "phase"="exit" "call-id"="call-1" "return"=1`,
	}, lines)
}

func TestLogrSink_globalLogger(t *testing.T) {
	var lines []string
	logcall.SetGlobalLogger(funcrLogger(&lines))
	defer logcall.SetGlobalLogger(logr.Discard())

	logcall.LogrSink{}.Emit(context.Background(), logcall.Record{Function: "h", Phase: logcall.PhaseError, Err: errSample})
	assert.Equal(t, []string{`h "msg"="call failed" "error"="sample failure" "phase"="error"`}, lines)
}

func TestSetAcquireLoggerFunc(t *testing.T) {
	var lines []string
	logcall.SetAcquireLoggerFunc(func(context.Context) logr.Logger { return funcrLogger(&lines) })
	defer logcall.SetAcquireLoggerFunc(logcall.DefaultAcquireLoggerFunc)

	logcall.LogrSink{}.AtLevel(1).Emit(context.Background(), logcall.Record{Function: "f", Phase: logcall.PhaseEntry})
	assert.Empty(t, lines, "verbosity 1 isn't enabled")

	logcall.LogrSink{}.Emit(context.Background(), logcall.Record{Function: "f", Phase: logcall.PhaseEntry})
	assert.Len(t, lines, 1)
}
