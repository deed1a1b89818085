package forecast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownPolicy is returned when text does not name a DisplayPolicy.
var ErrUnknownPolicy = errors.New("unknown display policy")

// DisplayPolicy controls whether a channel shows its forecast.
type DisplayPolicy int

const (
	Never DisplayPolicy = iota
	Always
	OnlyWhenRaining
	OnlyWhenNotRaining
)

var policyNames = []string{"NEVER", "ALWAYS", "RAINING", "NOT_RAINING"}

// String returns the canonical upper-case name, e.g. "NOT_RAINING".
func (p DisplayPolicy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return fmt.Sprintf("DisplayPolicy(%d)", int(p))
	}
	return policyNames[p]
}

// Normalize returns the name shown in config menus, e.g. "Not Raining".
func (p DisplayPolicy) Normalize() string {
	words := strings.ReplaceAll(strings.ToLower(p.String()), "_", " ")
	return cases.Title(language.Und).String(words)
}

// DisplayPolicyValues lists the menu names in declaration order.
func DisplayPolicyValues() []string {
	out := make([]string, len(policyNames))
	for i := range policyNames {
		out[i] = DisplayPolicy(i).Normalize()
	}
	return out
}

// ParseDisplayPolicy reads user input such as "not raining", "Not_Raining"
// or a near miss like "rainig".
func ParseDisplayPolicy(s string) (DisplayPolicy, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	in = strings.NewReplacer(" ", "_", "-", "_").Replace(in)
	if in == "" {
		return Never, fmt.Errorf("%w: empty value", ErrUnknownPolicy)
	}

	for i, name := range policyNames {
		if in == strings.ToLower(name) {
			return DisplayPolicy(i), nil
		}
	}

	if len(in) < 3 {
		return Never, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}

	best, bestDist, tied := -1, 0, false
	for i, name := range policyNames {
		cand := strings.ToLower(name)
		dist := levenshtein.ComputeDistance(in, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		switch {
		case best < 0 || dist < bestDist:
			best, bestDist, tied = i, dist, false
		case dist == bestDist:
			tied = true
		}
	}
	if best < 0 || tied {
		return Never, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
	return DisplayPolicy(best), nil
}

// PolicyFromInput parses s and falls back to Never.
func PolicyFromInput(s string) DisplayPolicy {
	p, err := ParseDisplayPolicy(s)
	if err != nil {
		return Never
	}
	return p
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func (p DisplayPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *DisplayPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseDisplayPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
