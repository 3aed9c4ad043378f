package runner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/set"
)

// KeyParser converts a key description to a keypad key.
type KeyParser func(s string) (uint8, error)

// Schedule contains scripted key presses for headless runs.
type Schedule struct {
	presses map[int]set.Set[uint8]
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		presses: map[int]set.Set[uint8]{},
	}
}

// ParseSchedule parses a comma separated list of frame:key entries, for
// example "30:w,31:#a". Keys are converted with the given parser.
func ParseSchedule(script string, parseKey KeyParser) (*Schedule, error) {
	schedule := NewSchedule()
	for entry := range strings.SplitSeq(script, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		frameText, keyText, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid key press '%s', expected frame:key", entry)
		}
		frame, err := strconv.Atoi(frameText)
		if err != nil || frame < 0 {
			return nil, fmt.Errorf("invalid frame in key press '%s'", entry)
		}
		key, err := parseKey(keyText)
		if err != nil {
			return nil, fmt.Errorf("parsing key press '%s': %w", entry, err)
		}

		schedule.Add(frame, key)
	}
	return schedule, nil
}

// Add schedules a key press at the start of the frame.
func (s *Schedule) Add(frame int, key uint8) {
	keys, ok := s.presses[frame]
	if !ok {
		keys = set.New[uint8]()
		s.presses[frame] = keys
	}
	keys.Add(key)
}

// Keys returns the keys pressed at the frame in ascending order.
func (s *Schedule) Keys(frame int) []uint8 {
	keys, ok := s.presses[frame]
	if !ok {
		return nil
	}
	return set.Sorted(keys)
}

// Len returns the number of scheduled key presses.
func (s *Schedule) Len() int {
	var n int
	for _, keys := range s.presses {
		n += keys.Size()
	}
	return n
}
