package bot

import (
	"fmt"
	"strings"
)

// ParseIDArg extracts a synth ID from a command argument string.
func ParseIDArg(args string) (string, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return "", fmt.Errorf("synth ID is required")
	}
	return strings.Fields(s)[0], nil
}

// ParseNotifyArgs parses arguments for /notify.
// Format: <synth_id> on|off
func ParseNotifyArgs(args string) (string, bool, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "", false, fmt.Errorf("usage: <synth_id> on|off")
	}

	switch strings.ToLower(parts[1]) {
	case "on":
		return parts[0], true, nil
	case "off":
		return parts[0], false, nil
	}
	return "", false, fmt.Errorf("invalid setting %q, use: on, off", parts[1])
}
