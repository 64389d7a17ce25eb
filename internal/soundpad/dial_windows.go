//go:build windows

package soundpad

import (
	"fmt"
	"io"
	"os"
)

// dialPipe opens the SoundPad named pipe. Named pipes accept plain file
// open semantics for a duplex byte stream, which is all the protocol needs.
func dialPipe(path string) (io.ReadWriteCloser, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open soundpad pipe %s: %w", path, err)
	}
	return f, nil
}
