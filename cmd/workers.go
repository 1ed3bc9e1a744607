package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// workers runs the background loops of the terminal. Stop cancels them and
// waits for them to return; it must run before the resources they use are
// closed.
type workers struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
}

func newWorkers(parent context.Context) *workers {
	ctx, cancel := context.WithCancel(parent)
	return &workers{ctx: ctx, cancel: cancel}
}

func (w *workers) Go(run func(context.Context)) {
	w.group.Go(func() error {
		run(w.ctx)
		return nil
	})
}

// Stop is safe to call more than once.
func (w *workers) Stop() {
	w.cancel()
	_ = w.group.Wait()
}
