package production

import "fmt"

// StationKind identifies a production facility type. Each character owns one
// independent scheduler slot per station kind, so a character can smelt and
// saw at the same time but never run two smelting batches at once.
type StationKind string

const (
	// StationSmelting - furnace, turns ores into bars
	StationSmelting StationKind = "SMELTING"

	// StationAssembly - anvil, turns bars into gear
	StationAssembly StationKind = "ASSEMBLY"

	// StationCutting - sawmill, turns logs into planks
	StationCutting StationKind = "CUTTING"
)

// AllStationKinds returns every known station kind in a stable order
func AllStationKinds() []StationKind {
	return []StationKind{StationSmelting, StationAssembly, StationCutting}
}

// IsValid reports whether the kind is one of the known stations
func (k StationKind) IsValid() bool {
	switch k {
	case StationSmelting, StationAssembly, StationCutting:
		return true
	default:
		return false
	}
}

// Skill returns the character skill that earns experience at this station
func (k StationKind) Skill() string {
	switch k {
	case StationSmelting:
		return "smithing"
	case StationAssembly:
		return "crafting"
	case StationCutting:
		return "carpentry"
	default:
		return ""
	}
}

func (k StationKind) String() string {
	return string(k)
}

// ParseStationKind converts a raw string into a StationKind
func ParseStationKind(raw string) (StationKind, error) {
	kind := StationKind(raw)
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown station kind: %q", raw)
	}
	return kind, nil
}
