package stream

import (
	"context"
	"sync"

	"github.com/faiface/enginesound"
)

// GeneratorBufferSize is the default number of samples a Fanout produces per chunk.
const GeneratorBufferSize = 256

// Fanout produces a Source's signal once, in fixed-size chunks, and hands every chunk to all of
// its subscribers. Unlike Exact streamers created with New over one shared Generator, which split
// the signal between them, Fanout subscribers all receive the same engine trajectory.
//
// The slowest subscriber paces the producer. A subscriber that stops reading must Unsubscribe.
type Fanout struct {
	src       Source
	sr        enginesound.SampleRate
	chunkSize int

	mu     sync.Mutex
	subs   map[*Exact]*subscription
	closed bool

	// wake is signalled by Subscribe so an idle Run resumes producing.
	wake chan struct{}
}

type subscription struct {
	ch   chan []float64
	done chan struct{}
	once sync.Once
}

// NewFanout creates a Fanout over src producing chunks of chunkSize samples. A chunkSize of zero
// or less means GeneratorBufferSize.
func NewFanout(src Source, sr enginesound.SampleRate, chunkSize int) *Fanout {
	if chunkSize <= 0 {
		chunkSize = GeneratorBufferSize
	}
	return &Fanout{
		src:       src,
		sr:        sr,
		chunkSize: chunkSize,
		subs:      make(map[*Exact]*subscription),
		wake:      make(chan struct{}, 1),
	}
}

// Subscribe returns an Exact streamer receiving every chunk produced from now on. Up to depth
// chunks are buffered for it before it holds the producer back. Subscribing to a stopped Fanout
// returns an already closed streamer.
func (f *Fanout) Subscribe(depth int) *Exact {
	if depth < 0 {
		depth = 0
	}
	sub := &subscription{
		ch:   make(chan []float64, depth),
		done: make(chan struct{}),
	}
	c := &chunkSource{chunks: sub.ch}
	e := &Exact{fill: c.fill, err: c.err, sr: f.sr}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(sub.ch)
		return e
	}
	f.subs[e] = sub
	select {
	case f.wake <- struct{}{}:
	default:
	}
	return e
}

// Unsubscribe stops sending chunks to e. Chunks already buffered for e can still be read, after
// which e reports ErrClosed.
func (f *Fanout) Unsubscribe(e *Exact) {
	f.mu.Lock()
	sub, ok := f.subs[e]
	f.mu.Unlock()
	if ok {
		sub.once.Do(func() { close(sub.done) })
	}
}

// Subscribers returns the number of active subscriptions.
func (f *Fanout) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Run produces chunks until ctx is done, then closes every subscription and returns ctx.Err().
// While there are no subscribers Run waits without pulling from the Source. Run must be called at
// most once.
func (f *Fanout) Run(ctx context.Context) error {
	defer f.closeAll()
	var subs []*Exact
	for {
		f.mu.Lock()
		subs = subs[:0]
		for e := range f.subs {
			subs = append(subs, e)
		}
		f.mu.Unlock()

		if len(subs) == 0 {
			select {
			case <-f.wake:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		chunk := make([]float64, f.chunkSize)
		f.src.Fill(chunk)
		for _, e := range subs {
			if err := f.send(ctx, e, chunk); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// send delivers chunk to one subscriber, dropping the subscriber if it unsubscribed meanwhile.
// Subscribers only ever read chunks, so one slice is shared between all of them.
func (f *Fanout) send(ctx context.Context, e *Exact, chunk []float64) error {
	f.mu.Lock()
	sub := f.subs[e]
	f.mu.Unlock()

	select {
	case <-sub.done:
		f.drop(e)
		return nil
	default:
	}
	select {
	case sub.ch <- chunk:
		return nil
	case <-sub.done:
		f.drop(e)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fanout) drop(e *Exact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[e]; ok {
		delete(f.subs, e)
		close(sub.ch)
	}
}

func (f *Fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for e, sub := range f.subs {
		delete(f.subs, e)
		close(sub.ch)
	}
	f.closed = true
}
