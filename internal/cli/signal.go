package cli

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Interrupt is a context cancelled by the first SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived, so shutdown logs can name it.
type Interrupt struct {
	context.Context
	cancel   context.CancelFunc
	sigs     chan os.Signal
	received atomic.Value
}

// OnInterrupt starts watching for SIGINT and SIGTERM. Call Stop to release the handler.
func OnInterrupt(parent context.Context) *Interrupt {
	ctx, cancel := context.WithCancel(parent)
	in := &Interrupt{Context: ctx, cancel: cancel, sigs: make(chan os.Signal, 1)}

	signal.Notify(in.sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(in.sigs)
		select {
		case sig := <-in.sigs:
			in.received.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return in
}

// Stop cancels the context and stops watching signals.
func (in *Interrupt) Stop() {
	in.cancel()
}

// Received returns the signal that cancelled the context, or nil.
func (in *Interrupt) Received() os.Signal {
	sig, _ := in.received.Load().(os.Signal)
	return sig
}
