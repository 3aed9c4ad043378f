package runner

import (
	"fmt"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/retroenv/retrogolib/log"
)

// FaultPolicy defines how the runner reacts to a fault of the program.
type FaultPolicy string

// Supported fault policies.
const (
	FaultHalt    FaultPolicy = "halt"    // stop and return the error
	FaultSkip    FaultPolicy = "skip"    // log and continue with the next frame
	FaultRestart FaultPolicy = "restart" // log, reset and reload the program
)

// FaultPolicies lists all supported policies.
var FaultPolicies = []FaultPolicy{FaultHalt, FaultSkip, FaultRestart}

// ParseFaultPolicy converts a policy name to a fault policy.
func ParseFaultPolicy(name string) (FaultPolicy, error) {
	policy := FaultPolicy(strings.ToLower(name))
	for _, supported := range FaultPolicies {
		if policy == supported {
			return policy, nil
		}
	}
	return "", fmt.Errorf("unsupported fault policy '%s', valid options: halt, skip, restart", name)
}

// handleFault applies the fault policy and returns the error if the machine
// halts.
func (r *Runner) handleFault(err error) error {
	r.faults++
	fields := []log.Field{
		log.Int("frame", r.frame),
		log.String("policy", string(r.opts.Fault)),
		log.Err(err),
	}

	if r.logger.Level() <= log.DebugLevel {
		fields = append(fields, log.StringFunc("state", r.dumpState))
	}

	switch r.opts.Fault {
	case FaultSkip:
		r.logger.Warn("Program fault, skipping frame", fields...)
		return nil

	case FaultRestart:
		r.logger.Warn("Program fault, restarting", fields...)
		r.Restart()
		return nil

	default:
		r.logger.Error("Program fault, halting", fields...)
		r.halted = true
		return fmt.Errorf("frame %d: %w", r.frame, err)
	}
}

// dumpState returns the machine registers formatted for debug output.
func (r *Runner) dumpState() string {
	printer := pp.New()
	printer.SetColoringEnabled(false)
	return printer.Sprint(r.machine.State())
}
