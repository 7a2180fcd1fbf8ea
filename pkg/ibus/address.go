package ibus

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/godbus/dbus/v5"
	"github.com/joho/godotenv"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoAddress = errors.New("ibus address not found")

var machineIDFiles = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// ResolveAddress finds the private bus of the ibus daemon. An explicit
// address wins, then IBUS_ADDRESS, then the address file ibus-daemon writes.
func ResolveAddress(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if addr := os.Getenv("IBUS_ADDRESS"); addr != "" {
		return addr, nil
	}

	machineID, err := readMachineID()
	if err != nil {
		return "", err
	}

	path := addressFile(xdg.ConfigHome, machineID, os.Getenv("DISPLAY"), os.Getenv("WAYLAND_DISPLAY"))
	return readAddressFile(path)
}

func Dial(address string) (*dbus.Conn, error) {
	conn, err := dbus.Connect(address)
	if err != nil {
		return nil, fmt.Errorf("connect to ibus: %w", err)
	}
	return conn, nil
}

func readMachineID() (string, error) {
	for _, path := range machineIDFiles {
		b, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(b)), nil
		}
	}

	return "", fmt.Errorf("read machine id: %w", ErrNoAddress)
}

// addressFile mirrors ibus_get_socket_path: <machine-id>-<host>-<display>,
// where host is "unix" for local displays.
func addressFile(configHome, machineID, display, waylandDisplay string) string {
	host, number := "unix", "0"

	switch {
	case display != "":
		h, rest, _ := strings.Cut(display, ":")
		if h != "" {
			host = h
		}
		number, _, _ = strings.Cut(rest, ".")
	case waylandDisplay != "":
		number = waylandDisplay
	}

	return filepath.Join(configHome, "ibus", "bus", fmt.Sprintf("%s-%s-%s", machineID, host, number))
}

func readAddressFile(path string) (string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	addr := env["IBUS_ADDRESS"]
	if addr == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoAddress)
	}

	return addr, nil
}
