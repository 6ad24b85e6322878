package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleton(t *testing.T) {
	s := NewSingleton(nil)

	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, 1, s.Size())
	assert.NoError(t, s.Barrier())

	require.NoError(t, s.Finalize())
	assert.ErrorIs(t, s.Finalize(), ErrFinalized)
	assert.ErrorIs(t, s.Barrier(), ErrFinalized)
}

func TestSingleton_Abort(t *testing.T) {
	var status int
	s := NewSingleton(func(code int) { status = code })

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Abort(ExitFailure)
		t.Error("Abort не должен возвращать управление")
	}()
	<-done

	assert.Equal(t, ExitFailure, status)
}
