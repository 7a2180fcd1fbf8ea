package hyprland

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"net"
	"os"
	"path/filepath"
)

var ErrNotRunning = errors.New("hyprland might not be running")

func connect(sock socketType) (net.Conn, error) {
	socketPath, err := getSocketPath(sock)
	if err != nil {
		return nil, fmt.Errorf("get socket path: %w", err)
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	return conn, nil
}

type socketType int

const (
	ctlSocket socketType = iota
	eventSocket
)

func (s socketType) fileName() (string, error) {
	switch s {
	case ctlSocket:
		return ".socket.sock", nil
	case eventSocket:
		return ".socket2.sock", nil
	}

	return "", fmt.Errorf("unknown socket type: %d", s)
}

func getSocketPath(sock socketType) (string, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE is not set, %w", ErrNotRunning)
	}

	name, err := sock.fileName()
	if err != nil {
		return "", err
	}

	// hyprland 0.40 moved its sockets from /tmp to the runtime dir
	for _, base := range []string{xdg.RuntimeDir, os.TempDir()} {
		dir := filepath.Join(base, "hypr", signature)
		if _, err := os.Stat(dir); err == nil {
			return filepath.Join(dir, name), nil
		}
	}

	return "", fmt.Errorf("no socket directory for instance %s, %w", signature, ErrNotRunning)
}
