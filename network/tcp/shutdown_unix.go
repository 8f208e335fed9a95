//go:build !windows

package tcp

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// shutdownBoth issues shutdown(SHUT_RDWR) on the socket behind c. Streams
// without a file descriptor fall back to closing their halves.
func shutdownBoth(c net.Conn) error {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return closeHalves(c)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	if err := raw.Control(func(fd uintptr) {
		serr = unix.Shutdown(int(fd), unix.SHUT_RDWR)
	}); err != nil {
		return err
	}
	return serr
}
