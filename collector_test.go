package metricslog

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testStart = time.Date(2024, 1, 15, 10, 30, 0, 123_000_000, time.UTC)

func newMockCollector(t *testing.T, sink Sink, opts ...CollectorOption) (*Collector, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(testStart)

	base := []CollectorOption{
		WithClock(mock),
		WithLocation(time.UTC),
		WithLogger(zaptest.NewLogger(t).Sugar()),
	}
	c, err := NewCollector(sink, time.Second, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop() })
	return c, mock
}

// tick advances the mock clock by one interval and waits for the flush.
func tick(t *testing.T, c *Collector, mock *clock.Mock) {
	t.Helper()
	want := c.Stats().Flushes + 1
	mock.Add(c.Interval())
	require.Eventually(t, func() bool {
		return c.Stats().Flushes >= want
	}, 2*time.Second, time.Millisecond, "flush did not happen")
}

func TestNewCollector_Validation(t *testing.T) {
	_, err := NewCollector(nil, time.Second)
	assert.ErrorIs(t, err, ErrNilSink)

	for _, d := range []time.Duration{0, -time.Second} {
		_, err = NewCollector(&memSink{}, d)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}

	c, err := NewFileCollector("metrics.log", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, c.Interval())
	assert.False(t, c.Running())
	assert.Equal(t, 0, c.Registry().Len())
}

func TestCollector_FlushAndReset(t *testing.T) {
	sink := &memSink{}
	c, mock := newMockCollector(t, sink)

	requests, err := c.RegisterCounter("requests")
	require.NoError(t, err)
	latency, err := c.RegisterAverage("latency")
	require.NoError(t, err)
	require.NoError(t, c.Start())

	for i := 0; i < 5; i++ {
		requests.Inc()
	}
	for _, v := range []float64{1, 2, 3} {
		latency.Record(v)
	}

	tick(t, c, mock)
	tick(t, c, mock)

	want := []string{
		`2024-01-15 10:30:01.123 "requests" 5 "latency" 2.00`,
		`2024-01-15 10:30:02.123 "requests" 0 "latency" 0.00`,
	}
	if diff := cmp.Diff(want, sink.Lines()); diff != "" {
		t.Fatalf("unexpected lines (-want +got):\n%s", diff)
	}

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Flushes)
	assert.Zero(t, stats.WriteErrors)
	assert.True(t, stats.LastFlush.Equal(testStart.Add(2*time.Second)))
}

func TestCollector_EndToEndFile(t *testing.T) {
	if testing.Short() {
		t.Skip("runs in real time")
	}

	path := filepath.Join(t.TempDir(), "metrics.log")
	c, err := NewFileCollector(path, time.Second, WithLogger(zaptest.NewLogger(t).Sugar()))
	require.NoError(t, err)
	defer c.Close()

	requests, err := c.RegisterCounter("requests")
	require.NoError(t, err)
	latency, err := c.RegisterAverage("latency")
	require.NoError(t, err)
	require.NoError(t, c.Start())

	go func() {
		for i := 0; i < 5; i++ {
			requests.Inc()
		}
		for _, v := range []float64{1, 2, 3} {
			latency.Record(v)
		}
	}()

	time.Sleep(1200 * time.Millisecond)
	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"requests" 5`)
	assert.Contains(t, lines[0], `"latency" 2.00`)

	require.Eventually(t, func() bool { return c.Stats().Flushes >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, c.Stop())

	lines = readLines(t, path)
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[1], `"requests" 0`)
	assert.Contains(t, lines[1], `"latency" 0.00`)
}

func TestCollector_StopIsIdempotent(t *testing.T) {
	sink := &memSink{}
	c, _ := newMockCollector(t, sink)

	// before Start
	assert.NoError(t, c.Stop())
	assert.NoError(t, c.Close())

	require.NoError(t, c.Start())
	require.NoError(t, c.Start())
	assert.True(t, c.Running())

	assert.NoError(t, c.Stop())
	assert.NoError(t, c.Stop())
	assert.False(t, c.Running())

	opened, closed := sink.counts()
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)
}

func TestCollector_StartFailure(t *testing.T) {
	sink := &memSink{openErr: errBoom}
	c, _ := newMockCollector(t, sink)

	err := c.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkOpen)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, c.Running())

	assert.NoError(t, c.Stop())
	_, closed := sink.counts()
	assert.Zero(t, closed)
}

func TestCollector_StartFailureMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metrics.log")
	c, err := NewFileCollector(path, time.Second)
	require.NoError(t, err)

	err = c.Start()
	assert.ErrorIs(t, err, ErrSinkOpen)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, c.Running())
}

func TestCollector_StopIsPrompt(t *testing.T) {
	sink := &memSink{}
	c, err := NewCollector(sink, time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Start())

	start := time.Now()
	require.NoError(t, c.Stop())
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, sink.Lines())
}

func TestCollector_NoFinalFlushOnStop(t *testing.T) {
	sink := &memSink{}
	c, _ := newMockCollector(t, sink)
	requests, err := c.RegisterCounter("requests")
	require.NoError(t, err)
	require.NoError(t, c.Start())

	requests.Add(3)
	require.NoError(t, c.Stop())

	assert.Empty(t, sink.Lines())
	assert.Equal(t, int64(3), requests.Snapshot())
}

func TestCollector_WriteErrorDoesNotStopLoop(t *testing.T) {
	sink := &memSink{writeErr: errBoom}
	c, mock := newMockCollector(t, sink)
	requests, err := c.RegisterCounter("requests")
	require.NoError(t, err)
	require.NoError(t, c.Start())

	requests.Add(4)
	tick(t, c, mock)
	tick(t, c, mock)

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Flushes)
	assert.Equal(t, uint64(2), stats.WriteErrors)
	assert.True(t, c.Running())
	// reset happened even though the write failed
	assert.Equal(t, int64(0), requests.Snapshot())
	assert.Equal(t, []string{
		`2024-01-15 10:30:01.123 "requests" 4`,
		`2024-01-15 10:30:02.123 "requests" 0`,
	}, sink.Lines())
}

func TestCollector_PanickingSinkDoesNotStopLoop(t *testing.T) {
	sink := &memSink{panicMsg: "sink exploded"}
	c, mock := newMockCollector(t, sink)
	require.NoError(t, c.Start())

	tick(t, c, mock)
	tick(t, c, mock)

	assert.Equal(t, uint64(2), c.Stats().WriteErrors)
	assert.True(t, c.Running())
}

func TestCollector_NoLostUpdatesAcrossFlushes(t *testing.T) {
	sink := &memSink{}
	c, mock := newMockCollector(t, sink)
	hits, err := c.RegisterCounter("hits")
	require.NoError(t, err)
	require.NoError(t, c.Start())

	const (
		producers  = 8
		increments = 5000
	)
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				hits.Inc()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

loop:
	for {
		select {
		case <-done:
			break loop
		default:
			tick(t, c, mock)
		}
	}
	// pick up whatever arrived after the last flush
	tick(t, c, mock)

	var total int64
	for _, line := range sink.Lines() {
		fields := strings.Fields(line)
		v, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
		require.NoError(t, err, line)
		total += v
	}
	assert.Equal(t, int64(producers*increments), total)
}

func TestCollector_Restart(t *testing.T) {
	sink := &memSink{}
	c, mock := newMockCollector(t, sink)
	requests, err := c.RegisterCounter("requests")
	require.NoError(t, err)

	require.NoError(t, c.Start())
	requests.Inc()
	tick(t, c, mock)
	require.NoError(t, c.Stop())

	require.NoError(t, c.Start())
	requests.Add(2)
	tick(t, c, mock)
	require.NoError(t, c.Stop())

	opened, closed := sink.counts()
	assert.Equal(t, 2, opened)
	assert.Equal(t, 2, closed)
	assert.Equal(t, []string{
		`2024-01-15 10:30:01.123 "requests" 1`,
		`2024-01-15 10:30:02.123 "requests" 2`,
	}, sink.Lines())
}

func TestCollector_LineShapes(t *testing.T) {
	t.Run("empty_registry", func(t *testing.T) {
		sink := &memSink{}
		c, mock := newMockCollector(t, sink)
		require.NoError(t, c.Start())
		tick(t, c, mock)
		assert.Equal(t, []string{"2024-01-15 10:30:01.123"}, sink.Lines())
	})

	t.Run("shared_registry_in_name_order", func(t *testing.T) {
		r := NewRegistry(WithNameOrder())
		cpu, err := r.RegisterAverage("CPU")
		require.NoError(t, err)
		rps, err := r.RegisterCounter("HTTP requests RPS")
		require.NoError(t, err)

		sink := &memSink{}
		c, mock := newMockCollector(t, sink, WithRegistry(r))
		assert.Same(t, r, c.Registry())
		require.NoError(t, c.Start())

		rps.Add(42)
		cpu.Record(0.87)
		tick(t, c, mock)
		assert.Equal(t, []string{`2024-01-15 10:30:01.123 "CPU" 0.87 "HTTP requests RPS" 42`}, sink.Lines())
	})

	t.Run("registered_while_running", func(t *testing.T) {
		sink := &memSink{}
		c, mock := newMockCollector(t, sink)
		require.NoError(t, c.Start())
		tick(t, c, mock)

		late, err := c.RegisterCounter("late")
		require.NoError(t, err)
		late.Inc()
		got, ok := c.Counter("late")
		require.True(t, ok)
		assert.Same(t, late, got)
		_, ok = c.Average("late")
		assert.False(t, ok)

		tick(t, c, mock)
		assert.Equal(t, []string{
			"2024-01-15 10:30:01.123",
			`2024-01-15 10:30:02.123 "late" 1`,
		}, sink.Lines())
	})
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	s := strings.TrimRight(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
