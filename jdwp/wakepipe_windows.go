//go:build windows

package jdwp

// wakeSignal mirrors the unix self-pipe on platforms without anonymous
// pipe file descriptors suitable for this purpose; a buffered channel
// gives the same single-producer wakeup semantics.
type wakeSignal struct {
	ch     chan struct{}
	closed chan struct{}
}

func newWakeSignal() (*wakeSignal, error) {
	return &wakeSignal{
		ch:     make(chan struct{}, 1),
		closed: make(chan struct{}),
	}, nil
}

func (p *wakeSignal) wake() {
	select {
	case p.ch <- struct{}{}:
	default:
	}
}

func (p *wakeSignal) wait() {
	select {
	case <-p.ch:
	case <-p.closed:
	}
}

func (p *wakeSignal) close() {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
}
