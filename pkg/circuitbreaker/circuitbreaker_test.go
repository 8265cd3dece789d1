package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNew_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New[int]("test", zaptest.NewLogger(t))
	boom := errors.New("boom")

	for i := 0; i < DefaultConsecutiveFailures; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	called := false
	_, err := cb.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}

func TestNew_SuccessResetsFailures(t *testing.T) {
	cb := New[int]("test", nil)
	boom := errors.New("boom")

	for i := 0; i < DefaultConsecutiveFailures-1; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, boom })
	}
	v, err := cb.Execute(func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, _ = cb.Execute(func() (int, error) { return 0, boom })
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
