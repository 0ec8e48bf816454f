package providers

import (
	"context"
	"os"
	"sync"
	"syscall"
)

// Registry tracks the request currently in flight so that a signal can
// cancel it and tear down the spinner.
type Registry struct {
	mu          sync.Mutex
	cancel      context.CancelFunc
	stopSpinner func()
	interrupted bool
}

func (r *Registry) Register(cancel context.CancelFunc, stopSpinner func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel = cancel
	r.stopSpinner = stopSpinner
	r.interrupted = false
}

func (r *Registry) Unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel = nil
	r.stopSpinner = nil
}

func (r *Registry) WasInterrupted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interrupted
}

// ForwardSignal cancels the registered request on SIGINT or SIGTERM.
func (r *Registry) ForwardSignal(sig os.Signal) {
	if sig != os.Interrupt && sig != syscall.SIGTERM {
		return
	}
	r.mu.Lock()
	cancel := r.cancel
	r.interrupted = true
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Registry) StopSpinnerIfSet() {
	r.mu.Lock()
	stop := r.stopSpinner
	r.stopSpinner = nil
	r.mu.Unlock()
	if stop != nil {
		stop()
	}
}
