//go:build !linux

package cmd

import "github.com/charmbracelet/log"

func countInstructions(f func() error, logger *log.Logger) error {
	logger.Warn("perf counters are only available on linux")
	return f()
}
