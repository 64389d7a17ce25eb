package soundpad

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Client issues remote-control requests over one open pipe connection.
// SoundPad answers each request with a single response; there is no framing
// beyond one read per write.
type Client struct {
	mu   sync.Mutex
	conn io.ReadWriteCloser
}

// NewClient wraps an established pipe connection.
func NewClient(conn io.ReadWriteCloser) *Client {
	return &Client{conn: conn}
}

// Request sends one command and returns the raw response.
func (c *Client) Request(command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return "", fmt.Errorf("soundpad connection is closed")
	}

	if _, err := c.conn.Write([]byte(command)); err != nil {
		return "", fmt.Errorf("send %q: %w", command, err)
	}

	buf := make([]byte, 512)
	n, err := c.conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("read response to %q: %w", command, err)
	}
	return strings.TrimSpace(string(buf[:n])), nil
}

// call sends a command that must answer with a success status.
func (c *Client) call(command string) error {
	response, err := c.Request(command)
	if err != nil {
		return err
	}
	if !isOK(response) {
		return fmt.Errorf("soundpad rejected %q: %s", command, response)
	}
	return nil
}

// AddSound uploads a sound file to the end of the sound list.
func (c *Client) AddSound(path string) error {
	return c.call(cmdAddSound(path))
}

// PlaySound starts playback of the indexed sound with routing flags.
func (c *Client) PlaySound(index int, speakers bool, microphone bool) error {
	return c.call(cmdPlaySound(index, speakers, microphone))
}

// StopSound halts any current playback.
func (c *Client) StopSound() error {
	return c.call(cmdStopSound())
}

// SelectIndex moves the list selection to index (1-based).
func (c *Client) SelectIndex(index int) error {
	return c.call(cmdSelectIndex(index))
}

// RemoveSelectedEntries deletes the selected list entries.
func (c *Client) RemoveSelectedEntries(removeFromDisk bool) error {
	return c.call(cmdRemoveSelectedEntries(removeFromDisk))
}

// SoundFileCount returns the number of sounds in the list. It doubles as
// the liveness probe: a responsive count means the device is usable.
func (c *Client) SoundFileCount() (int, error) {
	response, err := c.Request(cmdSoundFileCount())
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(response)
	if err != nil {
		return 0, fmt.Errorf("soundpad returned non-numeric count %q", response)
	}
	return count, nil
}

// Close releases the pipe connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
