//go:build linux

package cmd

import (
	"github.com/charmbracelet/log"
	perf "github.com/hodgesds/perf-utils"
)

// countInstructions runs f under a CPU instruction counter. Counters that
// cannot be opened, usually for lack of permission, only produce a warning.
func countInstructions(f func() error, logger *log.Logger) (err error) {
	var ran bool
	pv, perr := perf.CPUInstructions(func() error {
		ran = true
		err = f()
		return err
	})
	if perr != nil && err == nil {
		logger.Warn("perf counters unavailable", "err", perr)
		if !ran {
			err = f()
		}
		return
	}
	if pv != nil {
		logger.Info("perf", "instructions", pv.Value, "timeRunning", pv.TimeRunning)
	}
	return
}
