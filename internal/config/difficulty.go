package config

// Difficulty names understood by the game.
const (
	DifficultyEasy         = "easy"
	DifficultyIntermediate = "intermediate"
	DifficultyHard         = "hard"

	// DefaultDifficulty is used whenever a name is missing or unknown.
	DefaultDifficulty = DifficultyEasy
)

// DifficultyProfile bundles the parameters of one difficulty.
type DifficultyProfile struct {
	GridSize      int     `yaml:"grid_size"`      // Targets per row/column
	Movement      string  `yaml:"movement"`       // "none", "slow" or "fast" (display only)
	MovementSpeed float64 `yaml:"movement_speed"` // 0 disables target motion
	TimeLimit     int     `yaml:"time_limit"`     // Seconds on the countdown
	Lives         int     `yaml:"lives"`          // Starting lives
}

// Slots returns the number of grid positions for this profile.
func (p DifficultyProfile) Slots() int {
	return p.GridSize * p.GridSize
}

func (p DifficultyProfile) valid() bool {
	return p.GridSize >= 1 && p.TimeLimit >= 1 && p.Lives >= 1 && p.MovementSpeed >= 0
}

// DifficultyTable maps difficulty names to their profiles.
type DifficultyTable map[string]DifficultyProfile

var builtinDifficulties = DifficultyTable{
	DifficultyEasy: {
		GridSize:      3,
		Movement:      "none",
		MovementSpeed: 0,
		TimeLimit:     60,
		Lives:         3,
	},
	DifficultyIntermediate: {
		GridSize:      4,
		Movement:      "slow",
		MovementSpeed: 0.5,
		TimeLimit:     45,
		Lives:         3,
	},
	DifficultyHard: {
		GridSize:      4,
		Movement:      "fast",
		MovementSpeed: 1,
		TimeLimit:     30,
		Lives:         1,
	},
}

// DefaultDifficulties returns a copy of the built-in difficulty table.
func DefaultDifficulties() DifficultyTable {
	t := make(DifficultyTable, len(builtinDifficulties))
	for name, p := range builtinDifficulties {
		t[name] = p
	}
	return t
}

// Names returns the supported difficulty names, easiest first.
func (t DifficultyTable) Names() []string {
	return []string{DifficultyEasy, DifficultyIntermediate, DifficultyHard}
}

// Valid reports whether name is a supported difficulty.
func (t DifficultyTable) Valid(name string) bool {
	_, ok := builtinDifficulties[name]
	return ok
}

// Lookup returns the profile for name. Unknown names get the easy profile.
func (t DifficultyTable) Lookup(name string) DifficultyProfile {
	if !t.Valid(name) {
		name = DefaultDifficulty
	}
	if p, ok := t[name]; ok {
		return p
	}
	return builtinDifficulties[name]
}

// Normalize keeps only supported names and replaces invalid profiles with
// their built-in values.
func (t DifficultyTable) Normalize() DifficultyTable {
	out := DefaultDifficulties()
	for name, p := range t {
		if !out.Valid(name) || !p.valid() {
			continue
		}
		out[name] = p
	}
	return out
}

// LookupDifficulty looks name up in the built-in table.
func LookupDifficulty(name string) DifficultyProfile {
	return builtinDifficulties.Lookup(name)
}
