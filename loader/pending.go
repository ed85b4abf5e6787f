package loader

import (
	"context"
)

// operation is a selected retrieval, not yet started.
type operation func(ctx context.Context) ([]byte, error)

// Pending is a retrieval started by Resolve. The result is available once
// Done is closed.
type Pending struct {
	strategy Strategy
	done     chan struct{}
	data     []byte
	err      error
}

func start(ctx context.Context, strategy Strategy, op operation) *Pending {
	p := &Pending{
		strategy: strategy,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		p.data, p.err = op(ctx)
	}()
	return p
}

// Strategy returns the strategy that produced this retrieval.
func (p *Pending) Strategy() Strategy {
	return p.strategy
}

// Done is closed when the retrieval has completed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the retrieval completes or ctx is done. Abandoning a
// Pending through ctx does not stop the retrieval; cancel the context passed
// to Resolve for that.
func (p *Pending) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-p.done:
		return p.data, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
