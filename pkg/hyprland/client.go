package hyprland

import (
	"bufio"
	"fmt"
	"net"
	"strings"
)

// Client reads the event stream of socket2, one event per line.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ReadLine() (string, error) {
	str, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read from hypr socket: %w", err)
	}
	return strings.TrimSuffix(str, "\n"), nil
}

func Connect() (*Client, error) {
	conn, err := connect(eventSocket)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}
