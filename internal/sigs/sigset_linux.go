//go:build linux

package sigs

import (
	"time"

	"golang.org/x/sys/unix"
)

// addSignal sets sig's bit in a Sigset_t (sigaddset; x/sys/unix does
// not expose the C macro, and the set layout is platform-specific).
func addSignal(set *unix.Sigset_t, sig unix.Signal) {
	set.Val[(int(sig)-1)/64] |= 1 << uint((int(sig)-1)%64)
}

// pselectWait blocks until a descriptor in r is readable or timeout
// elapses. The sigmask argument stays nil: signal delivery reaches the
// wait through the self-pipe in r, not through a mask swap, because the
// Go runtime owns the process signal mask. EINTR just ends the wait
// early; callers loop.
func pselectWait(nfd int, r *unix.FdSet, timeout time.Duration) {
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	_, _ = unix.Pselect(nfd, r, nil, nil, &ts, nil)
}
