//go:build !windows

package device

import (
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const supportsSyncOutput = true

// makeRaw turns off echo, canonical mode, flow control, CR translation and
// output post-processing. ISIG stays on so Ctrl-C still raises SIGINT.
func makeRaw(fd int) (func(), error) {
	orig, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	raw := *orig
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Iflag &^= unix.ICRNL | unix.INLCR | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, err
	}
	return func() {
		_ = unix.IoctlSetTermios(fd, ioctlSetTermios, orig)
	}, nil
}

// keyReader polls the descriptor so a read never blocks past the timeout.
type keyReader struct {
	fd int
}

func newKeyReader(f *os.File) *keyReader {
	return &keyReader{fd: int(f.Fd())}
}

func (r *keyReader) next(timeout time.Duration) (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(r.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	if fds[0].Revents&(unix.POLLIN|unix.POLLHUP) == 0 {
		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return 0, false, io.EOF
		}
		return 0, false, nil
	}
	var b [1]byte
	m, err := unix.Read(r.fd, b[:])
	switch {
	case errors.Is(err, unix.EINTR), errors.Is(err, unix.EAGAIN):
		return 0, false, nil
	case err != nil:
		return 0, false, err
	case m == 0:
		return 0, false, io.EOF
	}
	return b[0], true, nil
}
