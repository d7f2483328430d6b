package battle

import (
	"fmt"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
	"github.com/pokewilds/pokewilds-server-go/internal/stats"
)

const maxLevel = 100

// ResolvePvPTurn runs one full turn of a PvP battle. The caller must
// have stored the required action(s) and set the phase to processing;
// the returned events are also appended to the state log.
//
// Only the opponent's faint stops the second actor: a first actor that
// knocks itself out (recoil) does not block the opponent's action.
func ResolvePvPTurn(s *PvPState, templates *dex.TemplateRepository, rng Rand) []Event {
	var events []Event

	events = append(events, turnStartEvent(s.TurnNumber))

	order := determinePvPOrder(s, rng)
	s.TurnOrder = &order

	events = append(events, messageEvent(fmt.Sprintf("Turn %d: %s", s.TurnNumber, order)))

	if order == PvPTurnOrderPlayer1First {
		if s.Player1Action != nil {
			executePvPAction(s, &events, Player1Ref(s.Player1.ActiveIndex), *s.Player1Action, rng)
			checkPvPFaints(s, &events, templates)

			if s.Phase != PvPPhaseFinished && !s.Player2.Active().Fainted && s.Player2Action != nil {
				executePvPAction(s, &events, Player2Ref(s.Player2.ActiveIndex), *s.Player2Action, rng)
				checkPvPFaints(s, &events, templates)
			}
		}
	} else {
		if s.Player2Action != nil {
			executePvPAction(s, &events, Player2Ref(s.Player2.ActiveIndex), *s.Player2Action, rng)
			checkPvPFaints(s, &events, templates)

			if s.Phase != PvPPhaseFinished && !s.Player1.Active().Fainted && s.Player1Action != nil {
				executePvPAction(s, &events, Player1Ref(s.Player1.ActiveIndex), *s.Player1Action, rng)
				checkPvPFaints(s, &events, templates)
			}
		}
	}

	applyPvPEndOfTurn(s, &events)
	checkPvPFaints(s, &events, templates)

	checkPvPBattleEnd(s)

	if s.Phase == PvPPhaseProcessing {
		s.TurnNumber++
		resolvePvPNextPhase(s)
	}

	s.Player1Action = nil
	s.Player2Action = nil
	s.TurnOrder = nil

	s.Log = append(s.Log, events...)
	return events
}

// determinePvPOrder applies the action-category precedence: items act
// before switches, switches before moves, moves ordered by speed with
// a coin flip on ties. Run is handled before moves despite the stated
// item > switch > move > run ordering; clients rely on an immediate
// surrender, so this stays.
func determinePvPOrder(s *PvPState, rng Rand) PvPTurnOrder {
	p1 := actionCategory(s.Player1Action)
	p2 := actionCategory(s.Player2Action)

	p1Speed := s.Player1.Active().Stats.Speed
	p2Speed := s.Player2.Active().Stats.Speed

	switch {
	case p1 == ActionUseItem && p2 != ActionUseItem:
		return PvPTurnOrderPlayer1First
	case p2 == ActionUseItem && p1 != ActionUseItem:
		return PvPTurnOrderPlayer2First
	case p1 == ActionSwitch && p2 != ActionSwitch && p2 != ActionUseItem:
		return PvPTurnOrderPlayer1First
	case p2 == ActionSwitch && p1 != ActionSwitch && p1 != ActionUseItem:
		return PvPTurnOrderPlayer2First
	case p1 == ActionUseMove && p2 == ActionUseMove:
		if p1Speed > p2Speed {
			return PvPTurnOrderPlayer1First
		}
		if p2Speed > p1Speed {
			return PvPTurnOrderPlayer2First
		}
		if rng.Intn(2) == 0 {
			return PvPTurnOrderPlayer1First
		}
		return PvPTurnOrderPlayer2First
	case p1 == ActionUseMove && p2 == ActionRun:
		return PvPTurnOrderPlayer2First
	case p2 == ActionUseMove && p1 == ActionRun:
		return PvPTurnOrderPlayer1First
	default:
		if p1Speed >= p2Speed {
			return PvPTurnOrderPlayer1First
		}
		return PvPTurnOrderPlayer2First
	}
}

func actionCategory(action *Action) ActionType {
	if action == nil {
		return ""
	}
	return action.Type
}

func executePvPAction(s *PvPState, log *[]Event, source EntityRef, action Action, rng Rand) {
	switch action.Type {
	case ActionUseMove:
		executePvPMove(s, log, source, action.MoveIndex, rng)
	case ActionSwitch:
		executePvPSwitch(s, log, source, action.TeamIndex)
	case ActionUseItem:
		executePvPItem(s, log, source, action.ItemID, action.IsCaptureItem)
	case ActionRun:
		executePvPSurrender(s, log, source)
	}
}

func pvpSideFor(s *PvPState, ref EntityRef) (*BattlePlayer, error) {
	switch ref.Kind {
	case EntityPlayer1:
		return &s.Player1, nil
	case EntityPlayer2:
		return &s.Player2, nil
	default:
		return nil, fmt.Errorf("entity kind %q is not part of a PvP battle", ref.Kind)
	}
}

func pvpOpponentRef(s *PvPState, ref EntityRef) (EntityRef, error) {
	switch ref.Kind {
	case EntityPlayer1:
		return Player2Ref(s.Player2.ActiveIndex), nil
	case EntityPlayer2:
		return Player1Ref(s.Player1.ActiveIndex), nil
	default:
		return EntityRef{}, fmt.Errorf("entity kind %q is not part of a PvP battle", ref.Kind)
	}
}

func executePvPMove(s *PvPState, log *[]Event, source EntityRef, moveIndex int, rng Rand) {
	attacker, err := s.PokemonFor(source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	if moveIndex < 0 || moveIndex >= len(attacker.Moves) {
		return
	}
	moveID := attacker.Moves[moveIndex].MoveID

	move, ok := s.Moves.Move(moveID)
	if !ok {
		return
	}

	target, err := pvpOpponentRef(s, source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}
	defender, err := s.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	*log = append(*log, messageEvent(fmt.Sprintf("%s used %s!", attacker.Name, move.Name)))

	if attacker.Moves[moveIndex].CurrentPP > 0 {
		attacker.Moves[moveIndex].CurrentPP--
	}

	damage, effectiveness, critical := CalculateDamage(
		attacker.Level, attacker.Stats, attacker.Types,
		defender.Stats, defender.Types,
		move, s.Moves.TypeChart(), rng,
	)

	applyDamageWithEffectiveness(s, log, target, damage, effectiveness, critical)

	*log = append(*log, moveUsedEvent(source, target, moveID, move.Name))
}

func executePvPSwitch(s *PvPState, log *[]Event, source EntityRef, teamIndex int) {
	side, err := pvpSideFor(s, source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}
	if teamIndex < 0 || teamIndex >= len(side.Team) {
		*log = append(*log, messageEvent("Error: switch target out of range"))
		return
	}

	outgoing := side.Active().Name
	incoming := side.Team[teamIndex].Name

	side.ActiveIndex = teamIndex
	side.MustSwitch = false

	*log = append(*log, messageEvent(fmt.Sprintf("%s was withdrawn! %s was sent out!", outgoing, incoming)))
	*log = append(*log, switchInEvent(NewPublicView(side.Team[teamIndex]), teamIndex))
}

func executePvPItem(s *PvPState, log *[]Event, source EntityRef, itemID string, isCaptureItem bool) {
	if isCaptureItem {
		*log = append(*log, messageEvent("Capture items cannot be used in PvP battles."))
		return
	}

	side, err := pvpSideFor(s, source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	itemName := itemDisplayName(itemID)
	target := source
	pokemon, err := s.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	if amount, ok := healItemAmount(itemID); ok {
		healed := pokemon.HealHP(amount)
		if healed > 0 {
			*log = append(*log, healEvent(target, HealDetail{
				Amount: healed,
				NewHP:  pokemon.CurrentHP,
				MaxHP:  pokemon.MaxHP,
			}))
		}
	}

	*log = append(*log, messageEvent(fmt.Sprintf("%s used %s!", side.Name, itemName)))
	*log = append(*log, itemUsedEvent(target, itemID, itemName))
}

func executePvPSurrender(s *PvPState, log *[]Event, source EntityRef) {
	side, err := pvpSideFor(s, source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	winner := &s.Player2
	if source.Kind == EntityPlayer2 {
		winner = &s.Player1
	}

	*log = append(*log, messageEvent(fmt.Sprintf("%s surrendered the battle!", side.Name)))
	*log = append(*log, messageEvent(fmt.Sprintf("%s surrendered. %s wins!", side.Name, winner.Name)))

	s.SurrenderedBy = side.PlayerID
	s.Phase = PvPPhaseFinished
}

func applyPvPEndOfTurn(s *PvPState, log *[]Event) {
	applyBurnDamage(s, log, Player1Ref(s.Player1.ActiveIndex), s.Player1.Active())
	applyBurnDamage(s, log, Player2Ref(s.Player2.ActiveIndex), s.Player2.Active())
}

// checkPvPFaints marks newly fainted actives, awards experience to the
// opposing active and finishes the battle when a side has nothing
// left. Both sides are marked before the team-wipe check so a
// simultaneous wipe ends in a draw rather than crediting whichever
// side was checked first. A faint event is emitted exactly once per
// Pokémon.
func checkPvPFaints(s *PvPState, log *[]Event, templates *dex.TemplateRepository) {
	p1Active := s.Player1.Active()
	if !p1Active.Fainted && p1Active.CurrentHP == 0 {
		p1Active.Fainted = true
		faintedRef := Player1Ref(s.Player1.ActiveIndex)
		*log = append(*log, faintedEvent(faintedRef))

		awardPvPExp(s, log, faintedRef, p1Active, &s.Player2, templates)
	}

	p2Active := s.Player2.Active()
	if !p2Active.Fainted && p2Active.CurrentHP == 0 {
		p2Active.Fainted = true
		faintedRef := Player2Ref(s.Player2.ActiveIndex)
		*log = append(*log, faintedEvent(faintedRef))

		awardPvPExp(s, log, faintedRef, p2Active, &s.Player1, templates)
	}

	// The wipe is announced once; later checks in the same turn (and
	// surrendered battles) must not repeat it.
	if s.Phase == PvPPhaseFinished {
		return
	}

	p1Wiped := s.Player1.AllFainted()
	p2Wiped := s.Player2.AllFainted()
	switch {
	case p1Wiped && p2Wiped:
		s.Phase = PvPPhaseFinished
		*log = append(*log, messageEvent("Neither side has a usable Pokémon left! The battle ended in a draw!"))
	case p1Wiped:
		s.Phase = PvPPhaseFinished
		*log = append(*log, messageEvent(fmt.Sprintf(
			"%s has no usable Pokémon left! %s wins the battle!", s.Player1.Name, s.Player2.Name)))
	case p2Wiped:
		s.Phase = PvPPhaseFinished
		*log = append(*log, messageEvent(fmt.Sprintf(
			"%s has no usable Pokémon left! %s wins the battle!", s.Player2.Name, s.Player1.Name)))
	}
}

func awardPvPExp(s *PvPState, log *[]Event, faintedRef EntityRef, fainted *BattlePokemon, winner *BattlePlayer, templates *dex.TemplateRepository) {
	expGained := PvPExpGain(fainted.BaseExp, fainted.Level)
	recipient := winner.Active()

	*log = append(*log, messageEvent(fmt.Sprintf("%s gained %d experience points!", recipient.Name, expGained)))

	levels := levelUpBattlePokemon(recipient, expGained, templates)
	if levels > 0 {
		*log = append(*log, messageEvent(fmt.Sprintf("%s grew to level %d!", recipient.Name, recipient.Level)))
	}

	*log = append(*log, expGainedEvent(faintedRef, expGained))
}

// PvPExpGain computes the experience for defeating an opposing
// Pokémon: floor(base * 1.5 * level / 7), at least 50.
func PvPExpGain(baseExp, level int) int64 {
	gained := int64(float64(baseExp) * 1.5 * float64(level) / 7.0)
	if gained < 50 {
		return 50
	}
	return gained
}

// levelUpBattlePokemon adds experience and levels the Pokémon up while
// it holds enough, capped at level 100 so the loop always terminates.
// Stats are recalculated per level and the max-HP delta is added to
// current HP.
func levelUpBattlePokemon(p *BattlePokemon, expGained int64, templates *dex.TemplateRepository) int {
	p.Exp += expGained

	template, ok := templates.Template(p.TemplateID)
	if !ok {
		return 0
	}

	levels := 0
	for p.Exp >= p.MaxExp && p.Level < maxLevel {
		p.Level++
		levels++

		oldMaxHP := p.MaxHP
		p.Stats = stats.Calculate(template.BaseStats, p.Level, p.IVs, p.EVs, p.Nature)
		p.MaxHP = p.Stats.HP
		p.CurrentHP += p.MaxHP - oldMaxHP

		p.MaxExp = dex.ExpThreshold(p.BaseExp, p.Level)
	}

	return levels
}

func checkPvPBattleEnd(s *PvPState) {
	if s.Player1.AllFainted() || s.Player2.AllFainted() {
		s.Phase = PvPPhaseFinished
	}
}

// resolvePvPNextPhase enumerates which actives fainted and which sides
// still have a usable bench member, mapping each combination to the
// next phase. A side that cannot continue ends the battle.
func resolvePvPNextPhase(s *PvPState) {
	p1Fainted := s.Player1.Active().Fainted
	p2Fainted := s.Player2.Active().Fainted
	p1CanSwitch := s.Player1.HasUsablePokemon()
	p2CanSwitch := s.Player2.HasUsablePokemon()

	switch {
	case p1Fainted && p2Fainted:
		if p1CanSwitch && p2CanSwitch {
			s.Phase = PvPPhaseWaitingForBoth
			s.Player1.MustSwitch = true
			s.Player2.MustSwitch = true
		} else {
			// At most one side can continue; either way the battle
			// cannot proceed as a fight.
			s.Phase = PvPPhaseFinished
		}
	case p1Fainted:
		if p1CanSwitch {
			s.Phase = PvPPhaseWaitingForPlayer1Switch
			s.Player1.MustSwitch = true
		} else {
			s.Phase = PvPPhaseFinished
		}
	case p2Fainted:
		if p2CanSwitch {
			s.Phase = PvPPhaseWaitingForPlayer2Switch
			s.Player2.MustSwitch = true
		} else {
			s.Phase = PvPPhaseFinished
		}
	default:
		s.Phase = PvPPhaseWaitingForBoth
	}
}
