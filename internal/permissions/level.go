package permissions

import "strings"

// Level is a plan tier, the unit of feature gating.
type Level string

const (
	Free       Level = "FREE"
	Pro        Level = "PRO"
	Enterprise Level = "ENTERPRISE"
)

// ParseLevel accepts a tier name in any case.
func ParseLevel(raw string) (Level, bool) {
	switch Level(strings.ToUpper(strings.TrimSpace(raw))) {
	case Free:
		return Free, true
	case Pro:
		return Pro, true
	case Enterprise:
		return Enterprise, true
	default:
		return "", false
	}
}

// AtLeast reports whether l grants everything min grants.
func (l Level) AtLeast(min Level) bool {
	return l.rank() >= min.rank()
}

func (l Level) rank() int {
	switch l {
	case Pro:
		return 1
	case Enterprise:
		return 2
	default:
		return 0
	}
}
