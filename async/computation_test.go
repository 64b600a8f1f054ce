package async

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSample = errors.New("sample failure")

func TestFunc(t *testing.T) {
	ctx := context.Background()
	c := Func(func(context.Context) (int, error) { return 1, nil })

	p, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.Equal(t, 1, p.Value())
	assert.NoError(t, p.Err())

	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFunc_failure(t *testing.T) {
	c := Func(func(context.Context) (string, error) { return "", errSample })

	p, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.ErrorIs(t, p.Err(), errSample)
}

func TestAwait(t *testing.T) {
	ctx := context.Background()
	sig := NewSignal()
	c := Await(sig.Done(), func(context.Context) (int, error) { return 1, nil })

	p, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, p.Complete())
	assert.Equal(t, sig.Done(), p.Wait())

	sig.Fire()
	sig.Fire() // firing again is a no-op

	p, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, p.Complete())
	v, perr := p.Result()
	assert.Equal(t, 1, v)
	assert.NoError(t, perr)

	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestAwait_readySuspendsOnce(t *testing.T) {
	ctx := context.Background()
	c := Await(Ready(), func(context.Context) (int, error) { return 1, nil })

	p, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, p.Complete())

	select {
	case <-p.Wait():
	default:
		t.Fatal("Ready() channel should be closed")
	}

	p, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, p.Complete())
}

func TestThen(t *testing.T) {
	ctx := context.Background()
	first := Await(Ready(), func(context.Context) (int, error) { return 20, nil })
	c := Then(first, func(_ context.Context, v int) Computation[int] {
		return Value(v + 1)
	})

	p, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, p.Complete())

	p, err = c.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.Equal(t, 21, p.Value())
}

func TestThen_nilContinuation(t *testing.T) {
	c := Then(Value(1), func(context.Context, int) Computation[int] { return nil })

	var err error
	require.NotPanics(t, func() { _, err = c.Advance(context.Background()) })
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "nil Computation")
}

func TestThen_shortCircuits(t *testing.T) {
	called := false
	c := Then(Fail[int](errSample), func(context.Context, int) Computation[string] {
		called = true
		return Value("unreachable")
	})

	p, err := c.Advance(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Complete())
	assert.ErrorIs(t, p.Err(), errSample)
	assert.False(t, called)
}

func TestThen_propagatesFault(t *testing.T) {
	ctx := context.Background()
	done := Value(1)
	_, err := done.Advance(ctx)
	require.NoError(t, err)

	c := Then(done, func(context.Context, int) Computation[int] { return Value(2) })
	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)

	// a computation that reported a fault doesn't get advanced again
	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
}

type countingComputation struct{ advances int }

func (c *countingComputation) Advance(context.Context) (Poll[int], error) {
	c.advances++
	return Succeeded(c.advances), nil
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	inner := &countingComputation{}
	c := Guard[int](inner)
	assert.Same(t, c, Guard(c))

	p, err := c.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Value())

	_, err = c.Advance(ctx)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, inner.advances)
}

func TestSignal_fireTwice(t *testing.T) {
	sig := NewSignal()
	select {
	case <-sig.Done():
		t.Fatal("unfired Signal should not be done")
	default:
	}

	done := make(chan struct{})
	go func() {
		sig.Fire()
		close(done)
	}()
	<-done
	assert.NotPanics(t, sig.Fire)

	select {
	case <-sig.Done():
	default:
		t.Fatal("fired Signal should be done")
	}
}
