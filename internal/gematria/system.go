// internal/gematria/system.go
package gematria

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NumeralSystem identifies one fixed letter-to-number mapping.
type NumeralSystem int

const (
	Ordinal NumeralSystem = iota
	Reduced
	ReverseOrdinal
	ClassicalWeighted
	Simple
	OffsetWeighted
)

// AllSystems lists every system in display order.
var AllSystems = []NumeralSystem{
	Ordinal,
	Reduced,
	ReverseOrdinal,
	ClassicalWeighted,
	Simple,
	OffsetWeighted,
}

var systemNames = [...]string{
	Ordinal:           "english",
	Reduced:           "reduced",
	ReverseOrdinal:    "reverse",
	ClassicalWeighted: "jewish",
	Simple:            "simple",
	OffsetWeighted:    "satanic",
}

// nameAliases accepts the spellings used by older word lists.
var nameAliases = map[string]NumeralSystem{
	"ordinal":            Ordinal,
	"reverse-ordinal":    ReverseOrdinal,
	"classical-weighted": ClassicalWeighted,
	"offset-weighted":    OffsetWeighted,
	"satantic":           OffsetWeighted,
}

// String returns the wire name of the system.
func (s NumeralSystem) String() string {
	if !s.Valid() {
		return fmt.Sprintf("NumeralSystem(%d)", int(s))
	}
	return systemNames[s]
}

// Valid reports whether s is one of the six known systems.
func (s NumeralSystem) Valid() bool {
	return s >= Ordinal && s <= OffsetWeighted
}

// ParseSystem resolves a wire name (case-insensitive) to a system.
func ParseSystem(name string) (NumeralSystem, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "sys-")
	for i, n := range systemNames {
		if n == key {
			return NumeralSystem(i), nil
		}
	}
	if s, ok := nameAliases[key]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("unknown numeral system %q", name)
}

// ParseSystems resolves a list of names, dropping duplicates while keeping
// the first-seen order.
func ParseSystems(names []string) ([]NumeralSystem, error) {
	out := make([]NumeralSystem, 0, len(names))
	for _, name := range names {
		s, err := ParseSystem(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return Unique(out), nil
}

// Unique returns systems without repeats, in first-seen order. A selection
// is a set, so each system is compared once.
func Unique(systems []NumeralSystem) []NumeralSystem {
	out := make([]NumeralSystem, 0, len(systems))
	seen := make(map[NumeralSystem]bool, len(systems))
	for _, s := range systems {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Names returns the wire names of systems.
func Names(systems []NumeralSystem) []string {
	out := make([]string, len(systems))
	for i, s := range systems {
		out[i] = s.String()
	}
	return out
}

func (s NumeralSystem) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid numeral system %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *NumeralSystem) UnmarshalText(text []byte) error {
	parsed, err := ParseSystem(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ValueVector maps each selected system to a token's value under it.
// Encoded as a JSON object keyed by system wire name.
type ValueVector map[NumeralSystem]int

// Systems returns the vector's domain in display order.
func (v ValueVector) Systems() []NumeralSystem {
	out := make([]NumeralSystem, 0, len(v))
	for _, s := range AllSystems {
		if _, ok := v[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Project returns a copy restricted to systems. Systems missing from v are
// omitted.
func (v ValueVector) Project(systems []NumeralSystem) ValueVector {
	out := make(ValueVector, len(systems))
	for _, s := range systems {
		if val, ok := v[s]; ok {
			out[s] = val
		}
	}
	return out
}

// Covers reports whether v has a value for every system.
func (v ValueVector) Covers(systems []NumeralSystem) bool {
	for _, s := range systems {
		if _, ok := v[s]; !ok {
			return false
		}
	}
	return true
}

func (v ValueVector) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, len(v))
	for s, val := range v {
		if !s.Valid() {
			return nil, fmt.Errorf("invalid numeral system %d", int(s))
		}
		m[s.String()] = val
	}
	return json.Marshal(m)
}

func (v *ValueVector) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(ValueVector, len(m))
	for name, val := range m {
		s, err := ParseSystem(name)
		if err != nil {
			return err
		}
		out[s] = val
	}
	*v = out
	return nil
}
