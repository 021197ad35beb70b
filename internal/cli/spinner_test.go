package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// quietSpinner draws into a buffer that is only read after Stop.
func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	s := newSpinnerWithContext(ctx, msg)
	s.w = buf
	return s, buf
}

func TestSpinnerDraws(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Verifying")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	assert.Contains(t, buf.String(), "Verifying")
	assert.False(t, s.Cancelled(), "Stop is not a cancellation")
}

func TestSpinnerUpdate(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "first")
	s.Start()
	s.Update("second message")
	time.Sleep(3 * spinnerInterval / 2)
	s.Stop()

	assert.Contains(t, buf.String(), "second message")
	assert.GreaterOrEqual(t, s.width, len("second message"))
	// The final clear covers the widest line.
	assert.True(t, strings.HasSuffix(buf.String(), strings.Repeat(" ", s.width+4)+"\r"))
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "cancel me")
	s.Start()
	cancel()
	time.Sleep(2 * spinnerInterval)

	assert.True(t, s.Cancelled())
	s.Stop()
	assert.True(t, s.Cancelled(), "a later Stop keeps the cancellation")
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s, _ := quietSpinner(ctx, "timeout")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	assert.True(t, s.Cancelled())
}

func TestSpinnerStopIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "stop")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithSuccess("done")
	s.StopWithError("failed")
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := newSpinner("never started")
	s.Stop()
	assert.False(t, s.Cancelled())
}
