//go:build !windows

package soundpad

import (
	"fmt"
	"io"
	"net"
	"time"
)

const dialTimeout = 2 * time.Second

// dialPipe connects to the remote-control endpoint. On non-Windows hosts
// the "pipe" is a unix socket, which is what Wine and test harnesses
// expose in place of the native named pipe.
func dialPipe(path string) (io.ReadWriteCloser, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial soundpad pipe %s: %w", path, err)
	}
	return conn, nil
}
