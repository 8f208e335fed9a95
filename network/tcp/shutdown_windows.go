//go:build windows

package tcp

import "net"

func shutdownBoth(c net.Conn) error {
	return closeHalves(c)
}
