package stats

import "math/rand"

// Nature modifies stat growth: one stat gets +10%, another -10%.
// Five of the 25 natures are fully neutral.
type Nature string

const (
	NatureHardy   Nature = "hardy"
	NatureLonely  Nature = "lonely"
	NatureBrave   Nature = "brave"
	NatureAdamant Nature = "adamant"
	NatureNaughty Nature = "naughty"
	NatureBold    Nature = "bold"
	NatureDocile  Nature = "docile"
	NatureRelaxed Nature = "relaxed"
	NatureImpish  Nature = "impish"
	NatureLax     Nature = "lax"
	NatureTimid   Nature = "timid"
	NatureHasty   Nature = "hasty"
	NatureSerious Nature = "serious"
	NatureJolly   Nature = "jolly"
	NatureNaive   Nature = "naive"
	NatureModest  Nature = "modest"
	NatureMild    Nature = "mild"
	NatureQuiet   Nature = "quiet"
	NatureBashful Nature = "bashful"
	NatureRash    Nature = "rash"
	NatureCalm    Nature = "calm"
	NatureGentle  Nature = "gentle"
	NatureSassy   Nature = "sassy"
	NatureCareful Nature = "careful"
	NatureQuirky  Nature = "quirky"
)

// AllNatures lists every nature in Pokédex order.
var AllNatures = []Nature{
	NatureHardy, NatureLonely, NatureBrave, NatureAdamant, NatureNaughty,
	NatureBold, NatureDocile, NatureRelaxed, NatureImpish, NatureLax,
	NatureTimid, NatureHasty, NatureSerious, NatureJolly, NatureNaive,
	NatureModest, NatureMild, NatureQuiet, NatureBashful, NatureRash,
	NatureCalm, NatureGentle, NatureSassy, NatureCareful, NatureQuirky,
}

type natureEffect struct {
	increased StatName
	decreased StatName
}

// natureEffects maps each non-neutral nature to the stats it raises
// and lowers. Neutral natures are absent.
var natureEffects = map[Nature]natureEffect{
	NatureLonely:  {StatAttack, StatDefense},
	NatureBrave:   {StatAttack, StatSpeed},
	NatureAdamant: {StatAttack, StatSpecialAttack},
	NatureNaughty: {StatAttack, StatSpecialDefense},
	NatureBold:    {StatDefense, StatAttack},
	NatureRelaxed: {StatDefense, StatSpecialDefense},
	NatureImpish:  {StatSpecialDefense, StatSpecialAttack},
	NatureLax:     {StatSpecialDefense, StatDefense},
	NatureTimid:   {StatSpeed, StatAttack},
	NatureHasty:   {StatSpeed, StatAttack},
	NatureJolly:   {StatSpeed, StatSpecialAttack},
	NatureNaive:   {StatSpeed, StatSpecialDefense},
	NatureModest:  {StatSpecialAttack, StatAttack},
	NatureMild:    {StatSpecialDefense, StatAttack},
	NatureQuiet:   {StatSpeed, StatSpecialAttack},
	NatureRash:    {StatSpecialDefense, StatSpecialAttack},
	NatureCalm:    {StatSpecialDefense, StatSpecialAttack},
	NatureGentle:  {StatSpecialDefense, StatSpeed},
	NatureSassy:   {StatSpeed, StatSpecialDefense},
	NatureCareful: {StatSpecialDefense, StatSpeed},
}

// Multiplier returns 1.1 for the raised stat, 0.9 for the lowered stat
// and 1.0 otherwise. Unknown natures behave as neutral.
func (n Nature) Multiplier(stat StatName) float64 {
	effect, ok := natureEffects[n]
	if !ok {
		return 1.0
	}
	switch stat {
	case effect.increased:
		return 1.1
	case effect.decreased:
		return 0.9
	default:
		return 1.0
	}
}

// IsNeutral reports whether the nature changes no stats.
func (n Nature) IsNeutral() bool {
	_, ok := natureEffects[n]
	return !ok
}

// RandomNature picks a uniformly random nature.
func RandomNature(rng *rand.Rand) Nature {
	return AllNatures[rng.Intn(len(AllNatures))]
}
