package stats

import "fmt"

// StatName identifies a single battle-relevant stat.
type StatName string

const (
	StatHP             StatName = "hp"
	StatAttack         StatName = "attack"
	StatDefense        StatName = "defense"
	StatSpecialAttack  StatName = "special_attack"
	StatSpecialDefense StatName = "special_defense"
	StatSpeed          StatName = "speed"
	StatAccuracy       StatName = "accuracy"
	StatEvasion        StatName = "evasion"
)

// DisplayName returns the stat name as shown in battle messages.
func (s StatName) DisplayName() string {
	switch s {
	case StatHP:
		return "HP"
	case StatAttack:
		return "Attack"
	case StatDefense:
		return "Defense"
	case StatSpecialAttack:
		return "Special Attack"
	case StatSpecialDefense:
		return "Special Defense"
	case StatSpeed:
		return "Speed"
	case StatAccuracy:
		return "Accuracy"
	case StatEvasion:
		return "Evasion"
	default:
		return string(s)
	}
}

// StatSet holds one value per core stat. It is used for base stats,
// IVs, EVs and calculated stats alike.
type StatSet struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special_attack"`
	SpecialDefense int `json:"special_defense"`
	Speed          int `json:"speed"`
}

// Get returns the value for a core stat. Accuracy/evasion have no base
// value and report an error.
func (s StatSet) Get(name StatName) (int, error) {
	switch name {
	case StatHP:
		return s.HP, nil
	case StatAttack:
		return s.Attack, nil
	case StatDefense:
		return s.Defense, nil
	case StatSpecialAttack:
		return s.SpecialAttack, nil
	case StatSpecialDefense:
		return s.SpecialDefense, nil
	case StatSpeed:
		return s.Speed, nil
	default:
		return 0, fmt.Errorf("stat %q has no stored value", name)
	}
}

// StageSet tracks the in-battle [-6, +6] stage modifiers, including the
// accuracy and evasion stages that have no base stat.
type StageSet struct {
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special_attack"`
	SpecialDefense int `json:"special_defense"`
	Speed          int `json:"speed"`
	Accuracy       int `json:"accuracy"`
	Evasion        int `json:"evasion"`
}

// MinStage and MaxStage bound every stage modifier.
const (
	MinStage = -6
	MaxStage = 6
)

// Stage returns the current stage for a stat. HP has no stage and
// reports an error.
func (s *StageSet) Stage(name StatName) (int, error) {
	switch name {
	case StatAttack:
		return s.Attack, nil
	case StatDefense:
		return s.Defense, nil
	case StatSpecialAttack:
		return s.SpecialAttack, nil
	case StatSpecialDefense:
		return s.SpecialDefense, nil
	case StatSpeed:
		return s.Speed, nil
	case StatAccuracy:
		return s.Accuracy, nil
	case StatEvasion:
		return s.Evasion, nil
	default:
		return 0, fmt.Errorf("stat %q has no battle stage", name)
	}
}

// SetStage stores a stage for a stat without clamping; callers clamp first.
func (s *StageSet) SetStage(name StatName, stage int) error {
	switch name {
	case StatAttack:
		s.Attack = stage
	case StatDefense:
		s.Defense = stage
	case StatSpecialAttack:
		s.SpecialAttack = stage
	case StatSpecialDefense:
		s.SpecialDefense = stage
	case StatSpeed:
		s.Speed = stage
	case StatAccuracy:
		s.Accuracy = stage
	case StatEvasion:
		s.Evasion = stage
	default:
		return fmt.Errorf("stat %q has no battle stage", name)
	}
	return nil
}

// Multiplier converts a stage into the multiplier applied to the
// underlying stat. Main stats use (2+stage)/2 when raised and
// 2/(2-stage) when lowered; accuracy and evasion use 3 in place of 2.
func (s *StageSet) Multiplier(name StatName) float64 {
	stage, err := s.Stage(name)
	if err != nil {
		return 1.0
	}

	base := 2.0
	if name == StatAccuracy || name == StatEvasion {
		base = 3.0
	}

	if stage >= 0 {
		return (base + float64(stage)) / base
	}
	return base / (base - float64(stage))
}

// Calculate derives the full stat block for a given level from base
// stats, IVs, EVs and nature.
//
// HP    = floor((2*base + iv + ev/4) * level / 100) + level + 10
// Other = floor(floor((2*base + iv + ev/4) * level / 100) + 5) * nature)
func Calculate(base StatSet, level int, ivs StatSet, evs StatSet, nature Nature) StatSet {
	return StatSet{
		HP:             (2*base.HP+ivs.HP+evs.HP/4)*level/100 + level + 10,
		Attack:         calcStat(base.Attack, ivs.Attack, evs.Attack, level, nature.Multiplier(StatAttack)),
		Defense:        calcStat(base.Defense, ivs.Defense, evs.Defense, level, nature.Multiplier(StatDefense)),
		SpecialAttack:  calcStat(base.SpecialAttack, ivs.SpecialAttack, evs.SpecialAttack, level, nature.Multiplier(StatSpecialAttack)),
		SpecialDefense: calcStat(base.SpecialDefense, ivs.SpecialDefense, evs.SpecialDefense, level, nature.Multiplier(StatSpecialDefense)),
		Speed:          calcStat(base.Speed, ivs.Speed, evs.Speed, level, nature.Multiplier(StatSpeed)),
	}
}

func calcStat(base, iv, ev, level int, natureMultiplier float64) int {
	raw := (2*base+iv+ev/4)*level/100 + 5
	return int(float64(raw) * natureMultiplier)
}
