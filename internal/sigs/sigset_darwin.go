//go:build darwin

package sigs

import (
	"time"

	"golang.org/x/sys/unix"
)

// addSignal sets sig's bit in a Sigset_t (sigaddset; x/sys/unix does
// not expose the C macro, and the set layout is platform-specific).
func addSignal(set *unix.Sigset_t, sig unix.Signal) {
	*set |= 1 << (uint32(sig) - 1)
}

// pselectWait blocks until a descriptor in r is readable or timeout
// elapses. x/sys/unix does not expose pselect on darwin; plain select
// is equivalent here because the self-pipe in r, not a mask swap,
// carries the signal wakeups.
func pselectWait(nfd int, r *unix.FdSet, timeout time.Duration) {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	_, _ = unix.Select(nfd, r, nil, nil, &tv)
}
