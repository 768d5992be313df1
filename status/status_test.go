package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timpalpant/gonash/failure"
)

func TestContextStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := FromContext(ctx)
	assert.NoError(t, s.Poll())

	s.ReportProgress(0.5, "halfway")
	fraction, msg := s.Progress()
	assert.Equal(t, 0.5, fraction)
	assert.Equal(t, "halfway", msg)

	cancel()
	err := s.Poll()
	assert.True(t, failure.Is(err, failure.ErrCanceled), "got %v", err)
}

func TestOrNull(t *testing.T) {
	assert.Equal(t, Null, OrNull(nil))
	assert.NoError(t, OrNull(nil).Poll())

	s := FromContext(context.Background())
	assert.Equal(t, Status(s), OrNull(s))
}
