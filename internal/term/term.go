// Package term is the terminal-capability collaborator: raw-mode
// toggling, terminal width, and foreground-process-group control.
// cmd/vush drives it directly, and internal/jobs reaches it through its
// Terminal interface rather than implementing terminal handling itself.
// Everything here is built directly on golang.org/x/sys/unix, the same
// package the job-control code already requires for Wait4 and Kill.
package term

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Terminal wraps the controlling tty for raw-mode editing and
// process-group handoff. It satisfies internal/jobs.Terminal.
type Terminal struct {
	fd     int
	saved  *unix.Termios
	isTerm bool
}

// Open wraps fd (typically os.Stdin.Fd()) for raw-mode and pgrp use.
func Open(fd int) *Terminal {
	_, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	return &Terminal{fd: fd, isTerm: err == nil}
}

// Fd returns the wrapped file descriptor.
func (t *Terminal) Fd() int { return t.fd }

// IsTerminal reports whether fd refers to a real tty.
func (t *Terminal) IsTerminal() bool { return t.isTerm }

// MakeRaw puts the terminal into raw/cbreak mode for character-at-a-time
// reads, remembering the previous state for Restore. A no-op (and
// non-error) on a non-tty fd, e.g. when stdin is a pipe in tests.
func (t *Terminal) MakeRaw() error {
	if !t.isTerm {
		return nil
	}
	orig, err := unix.IoctlGetTermios(t.fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("term: get termios: %w", err)
	}
	saved := *orig
	t.saved = &saved

	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &raw); err != nil {
		return fmt.Errorf("term: set termios: %w", err)
	}
	return nil
}

// Restore undoes MakeRaw, restoring the terminal's previous mode.
func (t *Terminal) Restore() error {
	if !t.isTerm || t.saved == nil {
		return nil
	}
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, t.saved); err != nil {
		return fmt.Errorf("term: restore termios: %w", err)
	}
	return nil
}

// Width returns the terminal's column count, or 80 if it cannot be
// determined.
func (t *Terminal) Width() int {
	ws, err := unix.IoctlGetWinsize(t.fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}

// SetForegroundPgrp hands the controlling terminal to pgid,
// implementing internal/jobs.Terminal. Callers are expected to bracket
// this with SIGTTOU ignored: the shell itself is a background process
// relative to the terminal for the instant of the ioctl.
func (t *Terminal) SetForegroundPgrp(pgid int) error {
	return unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid)
}

// ReadByte reads a single raw byte, retrying on EINTR.
func (t *Terminal) ReadByte() (byte, error) {
	var buf [1]byte
	for {
		n, err := unix.Read(t.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, os.ErrClosed
		}
		return buf[0], nil
	}
}
