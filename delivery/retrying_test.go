package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsukikage7/quartzkit/retry"
)

type flakyRecipient struct {
	failures int
	calls    int
	err      error
}

func (f *flakyRecipient) Deliver(ctx context.Context, env *Envelope) error {
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return f.err
		}
		return errors.New("transient")
	}
	return nil
}

func (f *flakyRecipient) Close() error { return nil }

func fastRetryConfig() *retry.Config {
	return &retry.Config{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		Backoff:     retry.ConstantBackoff,
	}
}

func TestRetryingDeliverRecovers(t *testing.T) {
	next := &flakyRecipient{failures: 2}
	r := NewRetrying(next, fastRetryConfig())

	require.NoError(t, r.Deliver(context.Background(), testEnvelope()))
	assert.Equal(t, 3, next.calls)
}

func TestRetryingDeliverExhausts(t *testing.T) {
	next := &flakyRecipient{failures: 10}
	r := NewRetrying(next, fastRetryConfig())

	assert.Error(t, r.Deliver(context.Background(), testEnvelope()))
	assert.Equal(t, 3, next.calls)
}

func TestRetryingSkipsValidationErrors(t *testing.T) {
	next := &flakyRecipient{failures: 10, err: ErrEmptyTopic}
	r := NewRetrying(next, fastRetryConfig())

	assert.ErrorIs(t, r.Deliver(context.Background(), testEnvelope()), ErrEmptyTopic)
	assert.Equal(t, 1, next.calls)
}
