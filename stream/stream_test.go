package stream_test

import (
	"context"
	"math/rand"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faiface/enginesound"
	"github.com/faiface/enginesound/engine"
	"github.com/faiface/enginesound/generators"
	"github.com/faiface/enginesound/stream"
)

const sampleRate = enginesound.SampleRate(20000)

func newGenerator(t *testing.T) *generators.Generator {
	t.Helper()
	g, err := generators.NewGenerator(sampleRate, engine.Default())
	require.NoError(t, err)
	g.SetVolume(0.5)
	return g
}

// reference returns the first n samples of a fresh Generator.
func reference(t *testing.T, n int) []float64 {
	t.Helper()
	samples := make([]float64, n)
	newGenerator(t).Fill(samples)
	return samples
}

func TestExactIsGapless(t *testing.T) {
	for i := 0; i < 7; i++ {
		e := stream.New(newGenerator(t), sampleRate)

		var got []float64
		for len(got) < 20000 {
			got = append(got, e.Request(rand.Intn(1500))...)
		}

		if !reflect.DeepEqual(reference(t, len(got)), got) {
			t.Fatal("concatenated requests differ from one request of the summed length")
		}
		assert.Equal(t, int64(len(got)), e.Delivered())
	}
}

func TestExactPosition(t *testing.T) {
	e := stream.New(newGenerator(t), sampleRate)
	e.Request(441)
	e.Request(9559)
	assert.Equal(t, int64(10000), e.Delivered())
	assert.Equal(t, 500*time.Millisecond, e.Position())
	assert.NoError(t, e.Err())
}

func TestExactStream(t *testing.T) {
	e := stream.New(newGenerator(t), sampleRate)
	samples := make([][2]float64, 479)
	want := reference(t, 479*3)
	for i := 0; i < 3; i++ {
		n, ok := e.Stream(samples)
		require.True(t, ok)
		require.Equal(t, 479, n)
		for j, s := range samples {
			x := want[i*479+j]
			if s != [2]float64{x, x} {
				t.Fatalf("sample %d: streamed %v, want %v", i*479+j, s, x)
			}
		}
	}
}

func TestExactStreamersShareOneGenerator(t *testing.T) {
	g := newGenerator(t)
	playback := stream.New(g, sampleRate)
	recording := stream.New(g, sampleRate)

	// The two consumers interleave, each receiving a contiguous run per request. Together they
	// consume the Generator's signal exactly once, in call order.
	var merged, played, recorded []float64
	for i := 0; i < 50; i++ {
		p := playback.Request(64 + i)
		r := recording.Request(300 - i)
		played = append(played, p...)
		recorded = append(recorded, r...)
		merged = append(merged, p...)
		merged = append(merged, r...)
	}

	assert.Equal(t, reference(t, len(merged)), merged)
	assert.Equal(t, int64(len(played)), playback.Delivered())
	assert.Equal(t, int64(len(recorded)), recording.Delivered())
}

func TestFanoutSubscribersHearTheSameSignal(t *testing.T) {
	const total = 12345

	f := stream.NewFanout(newGenerator(t), sampleRate, 0)
	playback := f.Subscribe(4)
	recording := f.Subscribe(1)
	assert.Equal(t, 2, f.Subscribers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	var wg sync.WaitGroup
	collect := func(e *stream.Exact, size int, out *[]float64) {
		defer wg.Done()
		for len(*out) < total {
			n := size
			if rest := total - len(*out); n > rest {
				n = rest
			}
			*out = append(*out, e.Request(n)...)
		}
	}
	var played, recorded []float64
	wg.Add(2)
	go collect(playback, 97, &played)
	go collect(recording, 1024, &recorded)
	wg.Wait()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	want := reference(t, total)
	assert.Equal(t, want, played)
	assert.Equal(t, want, recorded)

	// whatever was buffered is still readable, then the subscription reports ErrClosed
	for playback.Err() == nil {
		playback.Request(100)
	}
	assert.ErrorIs(t, playback.Err(), stream.ErrClosed)
	n, ok := playback.Stream(make([][2]float64, 10))
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.Equal(t, 0, f.Subscribers())
}

func TestFanoutUnsubscribe(t *testing.T) {
	f := stream.NewFanout(newGenerator(t), sampleRate, 128)
	stay := f.Subscribe(1)
	leave := f.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	first := stay.Request(128)
	assert.Equal(t, first, leave.Request(128))
	f.Unsubscribe(leave)

	// the remaining subscriber keeps receiving even though the other stopped reading
	got := append(first, stay.Request(128*20)...)
	assert.Equal(t, reference(t, len(got)), got)

	cancel()
	<-done
}

func TestSubscribeAfterStop(t *testing.T) {
	f := stream.NewFanout(newGenerator(t), sampleRate, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Run(ctx), context.Canceled)

	e := f.Subscribe(2)
	assert.Empty(t, e.Request(10))
	assert.ErrorIs(t, e.Err(), stream.ErrClosed)
}

// countingSource produces silence and counts how many samples were pulled from it.
type countingSource struct {
	filled atomic.Int64
}

func (c *countingSource) Fill(samples []float64) {
	for i := range samples {
		samples[i] = 0
	}
	c.filled.Add(int64(len(samples)))
}

func TestFanoutIdlesWithoutSubscribers(t *testing.T) {
	src := &countingSource{}
	f := stream.NewFanout(src, sampleRate, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, src.filled.Load(), "produced before anyone subscribed")

	e := f.Subscribe(1)
	assert.Len(t, e.Request(640), 640)
	assert.GreaterOrEqual(t, src.filled.Load(), int64(640))

	f.Unsubscribe(e)
	require.Eventually(t, func() bool { return f.Subscribers() == 0 }, time.Second, time.Millisecond)
	idle := src.filled.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, idle, src.filled.Load(), "produced after the last subscriber left")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
