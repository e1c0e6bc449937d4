package commandmeta

import (
	"strings"
)

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
)

// EmitsExecutionStatusPath reports whether a final [OK] or [ERROR] line is
// written to stderr after the command.
func EmitsExecutionStatusPath(path string) bool {
	fields := strings.Fields(path)
	if len(fields) < 2 || fields[0] != "reason" {
		return false
	}

	switch fields[len(fields)-1] {
	case "pull", "push", "add":
		return true
	case "init", "reset":
		return len(fields) == 2
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	switch strings.TrimSpace(path) {
	case "reason init",
		"reason reset",
		"reason completion bash",
		"reason completion zsh",
		"reason completion fish",
		"reason completion powershell":
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}
