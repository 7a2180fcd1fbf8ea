package hyprland

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDeviceNotFound  = errors.New("device not found")
)

var errorMapper = []struct {
	re  *regexp.Regexp
	err error
}{
	{regexp.MustCompile(`^ok$`), nil},
	{regexp.MustCompile(`layout idx out of range`), ErrIndexOutOfRange},
	{regexp.MustCompile(`device not found`), ErrDeviceNotFound},
}

func mapResponse(resp string) error {
	resp = strings.TrimSpace(resp)
	for _, m := range errorMapper {
		if m.re.MatchString(resp) {
			return m.err
		}
	}

	return fmt.Errorf("unknown hyprctl error: %s", resp)
}

// Hyprctl talks to the hyprctl request socket. Every request opens a new
// connection, hyprland closes it after replying.
type Hyprctl struct{}

func NewHyprctl() (*Hyprctl, error) {
	// fail early if hyprland is not there
	if _, err := getSocketPath(ctlSocket); err != nil {
		return nil, fmt.Errorf("get socket path: %w", err)
	}
	return &Hyprctl{}, nil
}

func (c *Hyprctl) SwitchToLayout(keyboard string, idx int) error {
	conn, err := c.makeRequest(fmt.Sprintf("switchxkblayout %s %d", keyboard, idx), "")
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("read response from hyprctl socket: %w", err)
	}

	if err := mapResponse(string(resp)); err != nil {
		return fmt.Errorf("switch %s to %d: %w", keyboard, idx, err)
	}

	return nil
}

func (c *Hyprctl) GetKeyboards() ([]Keyboard, error) {
	conn, err := c.makeRequest("devices", "j")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return decodeKeyboards(conn)
}

func decodeKeyboards(r io.Reader) ([]Keyboard, error) {
	var devs devices
	if err := json.NewDecoder(r).Decode(&devs); err != nil {
		return nil, fmt.Errorf("unmarshal devices: %w", err)
	}

	keyboards := devs.Keyboards
	out := make([]Keyboard, 0, len(keyboards))
	for _, k := range keyboards {
		out = append(out, k.ToKeyboard())
	}

	return out, nil
}

func (c *Hyprctl) makeRequest(request string, args string) (net.Conn, error) {
	conn, err := connect(ctlSocket)
	if err != nil {
		return nil, fmt.Errorf("connect to hyprctl socket: %w", err)
	}

	_, err = conn.Write([]byte(fmt.Sprintf("%s/%s", args, request)))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("write to hyprctl socket: %w", err)
	}

	return conn, nil
}
