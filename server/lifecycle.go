package server

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadyRunning is returned by Serve when the server is already serving.
var ErrAlreadyRunning = errors.New("server already running")

// lifecycle tracks one Serve call so Shutdown can stop it and wait.
type lifecycle struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *lifecycle) begin(ctx context.Context) (context.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return nil, ErrAlreadyRunning
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	return ctx, nil
}

func (l *lifecycle) end() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel()
	close(l.done)
	l.cancel, l.done = nil, nil
}

// Shutdown stops a running Serve and waits for it to return.
func (l *lifecycle) Shutdown() error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
