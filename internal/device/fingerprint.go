// Package device identifies the machine the client runs on.
package device

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoFingerprint is returned when no hardware identifier can be read.
var ErrNoFingerprint = errors.New("device: no hardware identifier found")

// These are variables so tests can point them elsewhere.
var (
	linuxIDFiles = []string{
		"/sys/class/dmi/id/product_uuid",
		"/etc/machine-id",
		"/var/lib/dbus/machine-id",
	}
	runCommand = func(name string, args ...string) ([]byte, error) {
		return exec.Command(name, args...).Output()
	}
)

// Fingerprint returns a stable identifier for this machine.
func Fingerprint() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return macOSUUID()
	case "linux":
		return linuxUUID()
	case "windows":
		return windowsUUID()
	default:
		return "", errors.New("device: unsupported platform: " + runtime.GOOS)
	}
}

func macOSUUID() (string, error) {
	out, err := runCommand("ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "IOPlatformUUID") {
			parts := strings.Split(line, "\"")
			if len(parts) >= 4 {
				return parts[3], nil
			}
		}
	}
	return "", ErrNoFingerprint
}

func linuxUUID() (string, error) {
	for _, path := range linuxIDFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	return "", ErrNoFingerprint
}

func windowsUUID() (string, error) {
	out, err := runCommand("wmic", "csproduct", "get", "UUID")
	if err != nil {
		return "", err
	}
	for _, line := range bytes.Split(out, []byte("\n")) {
		str := strings.TrimSpace(string(line))
		if str != "" && !strings.EqualFold(str, "UUID") {
			return str, nil
		}
	}
	return "", ErrNoFingerprint
}
