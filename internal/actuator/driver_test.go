package actuator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easylife-c/APHAv.2/internal/domain"
)

// recordingLine captures switch transitions for assertions.
type recordingLine struct {
	mu     sync.Mutex
	events []string
	active bool
	onErr  error
}

func (l *recordingLine) on() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.onErr != nil {
		return l.onErr
	}
	l.events = append(l.events, "on")
	l.active = true
	return nil
}

func (l *recordingLine) off() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "off")
	l.active = false
	return nil
}

func newRecordingDriver() (*driver, map[domain.NutrientID]*recordingLine) {
	recorders := make(map[domain.NutrientID]*recordingLine)
	lines := make(map[domain.NutrientID]line)
	for n := range PumpPins {
		rec := &recordingLine{}
		recorders[n] = rec
		lines[n] = rec
	}
	return newDriver(lines), recorders
}

func TestRunSwitchesOnThenOff(t *testing.T) {
	d, recorders := newRecordingDriver()

	err := d.Run(context.Background(), domain.Nitrogen, 5*time.Millisecond)
	require.NoError(t, err)

	rec := recorders[domain.Nitrogen]
	assert.Equal(t, []string{"on", "off"}, rec.events)
	assert.False(t, rec.active)
}

func TestRunZeroDurationIsNoOp(t *testing.T) {
	d, recorders := newRecordingDriver()

	err := d.Run(context.Background(), domain.Nitrogen, 0)
	require.NoError(t, err)
	assert.Empty(t, recorders[domain.Nitrogen].events)
}

func TestRunRejectsUnknownChannel(t *testing.T) {
	d, _ := newRecordingDriver()

	err := d.Run(context.Background(), domain.NutrientID("Zn"), time.Second)
	assert.ErrorIs(t, err, domain.ErrUnknownChannel)
}

func TestRunSwitchesOffOnCancellation(t *testing.T) {
	d, recorders := newRecordingDriver()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, domain.Phosphorus, time.Minute)
	}()

	// Give the run a moment to switch on, then cancel.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrActuationFailed)
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancellation")
	}

	rec := recorders[domain.Phosphorus]
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"on", "off"}, rec.events)
	assert.False(t, rec.active)
}

func TestRunSameChannelIsSerialized(t *testing.T) {
	d, recorders := newRecordingDriver()
	ctx := context.Background()

	const runs = 8
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Run(ctx, domain.Potassium, time.Millisecond))
		}()
	}
	wg.Wait()

	// Strict on/off alternation proves no overlapping runs on one pump.
	rec := recorders[domain.Potassium]
	require.Len(t, rec.events, runs*2)
	for i, ev := range rec.events {
		if i%2 == 0 {
			assert.Equal(t, "on", ev, "event %d", i)
		} else {
			assert.Equal(t, "off", ev, "event %d", i)
		}
	}
}

func TestRunOnFailureReportsActuationFailed(t *testing.T) {
	d, recorders := newRecordingDriver()
	recorders[domain.Nitrogen].onErr = errors.New("relay fault")

	err := d.Run(context.Background(), domain.Nitrogen, time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrActuationFailed)
}

func TestSimulatedDriverCompressesDelay(t *testing.T) {
	d := NewSimulated(false)

	start := time.Now()
	err := d.Run(context.Background(), domain.Nitrogen, 30*time.Second)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
