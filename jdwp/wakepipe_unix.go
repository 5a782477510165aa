//go:build !windows

package jdwp

import "golang.org/x/sys/unix"

// wakeSignal lets one goroutine interrupt another goroutine that is
// blocked waiting on it, without polling. On unix this is the classic
// self-pipe: wake() writes a byte, the blocked reader's read returns.
type wakeSignal struct {
	r, w int
}

func newWakeSignal() (*wakeSignal, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, err
	}
	return &wakeSignal{r: fds[0], w: fds[1]}, nil
}

// wake unblocks a goroutine sitting in wait. Safe to call more than once;
// extra wakeups are merely extra bytes in the pipe buffer.
func (p *wakeSignal) wake() {
	var b [1]byte
	_, _ = unix.Write(p.w, b[:])
}

// wait blocks until wake is called or the signal is closed.
func (p *wakeSignal) wait() {
	var buf [1]byte
	for {
		n, err := unix.Read(p.r, buf[:])
		if n > 0 || err != unix.EINTR {
			return
		}
	}
}

func (p *wakeSignal) close() {
	unix.Close(p.r)
	unix.Close(p.w)
}
