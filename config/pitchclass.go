package config

import (
	"fmt"
	"math/bits"
	"strings"

	"gopkg.in/yaml.v3"
)

// PitchClassSet is a set of pitch classes 0..11 stored as a bit mask, so a
// Config holding one can be copied without sharing state.
type PitchClassSet uint16

const allPitchClasses PitchClassSet = 1<<12 - 1

// DiatonicMajor is {0, 2, 4, 5, 7, 9, 11}.
const DiatonicMajor PitchClassSet = 1<<0 | 1<<2 | 1<<4 | 1<<5 | 1<<7 | 1<<9 | 1<<11

// NewPitchClassSet builds a set from pitch classes in the range 0..11.
func NewPitchClassSet(classes ...int) (PitchClassSet, error) {
	var s PitchClassSet
	for _, pc := range classes {
		if pc < 0 || pc > 11 {
			return 0, invalidf("pitch class must be 0-11, got %d", pc)
		}
		s |= 1 << pc
	}
	return s, nil
}

// PitchClass reduces an interval in semitones to 0..11.
func PitchClass(semitones int) int {
	pc := semitones % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// Contains reports whether the pitch class of the interval is in the set.
func (s PitchClassSet) Contains(semitones int) bool {
	return s&(1<<PitchClass(semitones)) != 0
}

// Len returns the number of pitch classes in the set.
func (s PitchClassSet) Len() int {
	return bits.OnesCount16(uint16(s & allPitchClasses))
}

// Classes returns the members in ascending order.
func (s PitchClassSet) Classes() []int {
	out := make([]int, 0, s.Len())
	for pc := 0; pc < 12; pc++ {
		if s&(1<<pc) != 0 {
			out = append(out, pc)
		}
	}
	return out
}

func (s PitchClassSet) String() string {
	parts := make([]string, 0, 12)
	for _, pc := range s.Classes() {
		parts = append(parts, fmt.Sprint(pc))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// UnmarshalYAML reads a set written as a sequence of integers.
func (s *PitchClassSet) UnmarshalYAML(value *yaml.Node) error {
	var classes []int
	if err := value.Decode(&classes); err != nil {
		return fmt.Errorf("scale must be a list of pitch classes: %w", err)
	}
	set, err := NewPitchClassSet(classes...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalYAML writes the set as a sequence of integers.
func (s PitchClassSet) MarshalYAML() (any, error) {
	return s.Classes(), nil
}
