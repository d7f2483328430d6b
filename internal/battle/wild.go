package battle

import (
	"fmt"
	"strings"

	"github.com/pokewilds/pokewilds-server-go/internal/dex"
)

const wildFleeChance = 0.1

// ResolveWildTurn runs one full turn of a wild battle: ordering,
// action execution, end-of-turn effects and phase transition. The
// caller must have stored both pending actions and set the phase to
// processing; the returned events are also appended to the state log.
//
// If either side faints after the first action, the second action is
// skipped for the rest of the turn.
func ResolveWildTurn(s *WildState, rng Rand) []Event {
	var events []Event

	order := TurnOrderPlayerFirst
	if s.Player.Active().Stats.Speed < s.Wild.Stats.Speed {
		order = TurnOrderWildFirst
	}
	s.TurnOrder = &order

	events = append(events, messageEvent(fmt.Sprintf("Turn %d: %s goes first.", s.TurnNumber, order)))

	first, second := WildRef(), PlayerRef(s.Player.ActiveIndex)
	if order == TurnOrderPlayerFirst {
		first, second = second, first
	}

	executeWildAction(s, &events, first, rng)
	if !checkWildFaints(s, &events) {
		executeWildAction(s, &events, second, rng)
		checkWildFaints(s, &events)
	}

	applyWildEndOfTurn(s, &events)
	checkWildFaints(s, &events)

	if s.Player.AllFainted() {
		s.Phase = WildPhaseFinished
	}

	if s.Phase == WildPhaseProcessing {
		s.TurnNumber++

		activeFainted := s.Player.Active().Fainted
		switch {
		case activeFainted && s.Player.HasUsablePokemon():
			s.Phase = WildPhaseWaitingForSwitch
			s.Player.MustSwitch = true
		case activeFainted:
			s.Phase = WildPhaseFinished
		default:
			s.Phase = WildPhaseWaitingForAction
		}
	}

	s.PlayerAction = nil
	s.WildAction = nil
	s.TurnOrder = nil

	s.Log = append(s.Log, events...)
	return events
}

func executeWildAction(s *WildState, log *[]Event, source EntityRef, rng Rand) {
	switch source.Kind {
	case EntityPlayer:
		action := s.PlayerAction
		if action == nil {
			return
		}
		switch action.Type {
		case ActionUseMove:
			executeWildMove(s, log, source, action.MoveIndex, rng)
		case ActionSwitch:
			executeWildSwitch(s, log, action.TeamIndex)
		case ActionUseItem:
			if action.IsCaptureItem {
				executeCapture(s, log, action.ItemID, rng)
			} else {
				executeWildItem(s, log, action.ItemID)
			}
		case ActionRun:
			executeRun(s, log)
		}
	case EntityWild:
		action := s.WildAction
		if action == nil {
			action = &WildAction{Type: WildActionStruggle}
		}
		switch action.Type {
		case WildActionUseMove:
			executeWildMove(s, log, source, action.MoveIndex, rng)
		case WildActionStruggle:
			executeStruggle(s, log, source, rng)
		case WildActionFlee:
			executeWildFlee(s, log, rng)
		}
	default:
		*log = append(*log, messageEvent(fmt.Sprintf("Error: entity kind %q cannot act in a wild battle", source.Kind)))
	}
}

func executeWildMove(s *WildState, log *[]Event, source EntityRef, moveIndex int, rng Rand) {
	attacker, err := s.PokemonFor(source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	moveID := 0
	moveName := "Unknown Move"
	if moveIndex >= 0 && moveIndex < len(attacker.Moves) {
		moveID = attacker.Moves[moveIndex].MoveID
		moveName = s.Moves.MoveName(moveID)

		if attacker.Moves[moveIndex].CurrentPP > 0 {
			attacker.Moves[moveIndex].CurrentPP--
		}
	}

	*log = append(*log, messageEvent(fmt.Sprintf("%s used %s!", attacker.Name, moveName)))

	target := WildRef()
	if source.Kind == EntityWild {
		target = PlayerRef(s.Player.ActiveIndex)
	}
	defender, err := s.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	move, ok := s.Moves.Move(moveID)
	if !ok {
		// Unknown move: fixed fallback damage so a bad data file
		// cannot stall the battle.
		applyDamageWithEffectiveness(s, log, target, 10, 1.0, false)
		*log = append(*log, moveUsedEvent(source, target, moveID, moveName))
		return
	}

	if move.Power != nil {
		damage, effectiveness, critical := CalculateDamage(
			attacker.Level, attacker.Stats, attacker.Types,
			defender.Stats, defender.Types,
			move, s.Moves.TypeChart(), rng,
		)
		if damage > 0 {
			applyDamageWithEffectiveness(s, log, target, damage, effectiveness, critical)

			if move.Secondary != nil {
				roll := rng.Intn(100) + 1
				if roll <= move.Secondary.Chance {
					applyEffect(s, log, move.Secondary.Effect, source, target)
				}
			}
		} else if effectiveness != 0 {
			*log = append(*log, messageEvent("But it failed!"))
		}
	} else {
		applyEffect(s, log, move.Effect, source, target)
	}

	*log = append(*log, moveUsedEvent(source, target, moveID, moveName))
}

func executeStruggle(s *WildState, log *[]Event, source EntityRef, rng Rand) {
	attacker, err := s.PokemonFor(source)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	*log = append(*log, messageEvent(fmt.Sprintf("%s used Struggle!", attacker.Name)))

	target := WildRef()
	if source.Kind == EntityWild {
		target = PlayerRef(s.Player.ActiveIndex)
	}
	defender, err := s.PokemonFor(target)
	if err != nil {
		*log = append(*log, messageEvent(fmt.Sprintf("Error: %v", err)))
		return
	}

	damage, effectiveness, critical := CalculateDamage(
		attacker.Level, attacker.Stats, attacker.Types,
		defender.Stats, defender.Types,
		dex.Struggle, s.Moves.TypeChart(), rng,
	)

	if damage > 0 {
		applyDamageWithEffectiveness(s, log, target, damage, effectiveness, critical)

		if critical {
			*log = append(*log, messageEvent("A critical hit!"))
		}

		// Recoil is a quarter of the damage dealt, never critical.
		recoil := damage / 4
		if recoil > 0 {
			*log = append(*log, messageEvent(fmt.Sprintf("%s was damaged by recoil!", attacker.Name)))
			applyDamageWithEffectiveness(s, log, source, recoil, 1.0, false)
		}
	}

	*log = append(*log, moveUsedEvent(source, target, dex.Struggle.ID, dex.Struggle.Name))
}

func executeWildSwitch(s *WildState, log *[]Event, teamIndex int) {
	if teamIndex < 0 || teamIndex >= len(s.Player.Team) {
		*log = append(*log, messageEvent("Error: switch target out of range"))
		return
	}

	outgoing := s.Player.Active().Name
	incoming := s.Player.Team[teamIndex].Name

	s.Player.ActiveIndex = teamIndex
	s.Player.MustSwitch = false

	*log = append(*log, messageEvent(fmt.Sprintf("%s was withdrawn! %s was sent out!", outgoing, incoming)))
	*log = append(*log, switchInEvent(NewPublicView(s.Player.Team[teamIndex]), teamIndex))
}

func executeWildItem(s *WildState, log *[]Event, itemID string) {
	itemName := itemDisplayName(itemID)
	active := s.Player.Active()
	target := PlayerRef(s.Player.ActiveIndex)

	*log = append(*log, messageEvent(fmt.Sprintf("%s used %s on %s!", s.Player.Name, itemName, active.Name)))

	if amount, ok := healItemAmount(itemID); ok {
		healed := active.HealHP(amount)
		if healed > 0 {
			*log = append(*log, healEvent(target, HealDetail{
				Amount: healed,
				NewHP:  active.CurrentHP,
				MaxHP:  active.MaxHP,
			}))
		}
	}

	*log = append(*log, itemUsedEvent(target, itemID, itemName))
}

func executeCapture(s *WildState, log *[]Event, ballID string, rng Rand) {
	ball := ballTypeForItem(ballID)

	*log = append(*log, messageEvent(fmt.Sprintf("%s threw a %s at the wild %s!", s.Player.Name, ball.DisplayName(), s.Wild.Name)))

	// Success chance rises as the wild Pokémon's HP drops: 30% at
	// full HP up to 70% at zero. Ball type does not factor in yet.
	chance := 0.3 + 0.4*(1.0-s.Wild.HPPercent())
	success := rng.Float64() < chance

	shakes := 3
	if !success {
		shakes = rng.Intn(3)
	}

	*log = append(*log, captureAttemptEvent(CaptureDetail{BallType: ball, ShakeCount: shakes, Success: success}))
	s.CaptureAttempts = append(s.CaptureAttempts, CaptureAttempt{
		BallType:   ball,
		ShakeCount: shakes,
		Success:    success,
		TurnNumber: s.TurnNumber,
	})

	if success {
		*log = append(*log, messageEvent(fmt.Sprintf("Gotcha! %s was caught!", s.Wild.Name)))
		s.Phase = WildPhaseFinished
		return
	}

	var shakeMessage string
	switch shakes {
	case 0:
		shakeMessage = fmt.Sprintf("The %s broke free immediately!", s.Wild.Name)
	case 1:
		shakeMessage = fmt.Sprintf("The %s broke free after 1 shake!", s.Wild.Name)
	case 2:
		shakeMessage = fmt.Sprintf("So close! The %s almost got caught!", s.Wild.Name)
	default:
		shakeMessage = fmt.Sprintf("The %s broke free!", s.Wild.Name)
	}
	*log = append(*log, messageEvent(shakeMessage))
}

func executeRun(s *WildState, log *[]Event) {
	// Running from a wild battle always succeeds for now; speed based
	// escape odds would go here.
	*log = append(*log, messageEvent(fmt.Sprintf("%s fled from the wild %s!", s.Player.Name, s.Wild.Name)))
	*log = append(*log, ranAwayEvent(true))
	s.Phase = WildPhaseFinished
}

func executeWildFlee(s *WildState, log *[]Event, rng Rand) {
	success := rng.Float64() < wildFleeChance

	*log = append(*log, messageEvent(fmt.Sprintf("The wild %s fled!", s.Wild.Name)))
	*log = append(*log, wildFledEvent())
	if success {
		s.Phase = WildPhaseFinished
	}
}

// applyWildEndOfTurn applies end-of-turn status damage. Burn is the
// only condition with behavior so far.
func applyWildEndOfTurn(s *WildState, log *[]Event) {
	applyBurnDamage(s, log, PlayerRef(s.Player.ActiveIndex), s.Player.Active())
	applyBurnDamage(s, log, WildRef(), s.Wild)
}

func applyBurnDamage(field battlefield, log *[]Event, ref EntityRef, pokemon *BattlePokemon) {
	if pokemon.Status != dex.StatusBurn {
		return
	}
	damage := pokemon.MaxHP / 16
	if damage == 0 {
		return
	}

	applyDamageWithEffectiveness(field, log, ref, damage, 1.0, false)
	*log = append(*log, statusDamageEvent(ref, StatusDetail{
		Status: dex.StatusBurn,
		Damage: damage,
		NewHP:  pokemon.CurrentHP,
		MaxHP:  pokemon.MaxHP,
	}))
}

// checkWildFaints marks newly fainted Pokémon, emitting a faint event
// exactly once per Pokémon. A wild faint finishes the battle.
func checkWildFaints(s *WildState, log *[]Event) bool {
	fainted := false

	active := s.Player.Active()
	if !active.Fainted && active.CurrentHP == 0 {
		active.Fainted = true
		*log = append(*log, faintedEvent(PlayerRef(s.Player.ActiveIndex)))
		fainted = true
	}

	if !s.Wild.Fainted && s.Wild.CurrentHP == 0 {
		s.Wild.Fainted = true
		*log = append(*log, faintedEvent(WildRef()))
		s.Phase = WildPhaseFinished
		fainted = true
	}

	return fainted
}

// DetermineWildAction picks the wild Pokémon's action for a turn: the
// first move with PP left, Struggle otherwise.
func DetermineWildAction(wild *BattlePokemon) WildAction {
	if index, ok := wild.FirstUsableMove(); ok {
		return WildAction{Type: WildActionUseMove, MoveIndex: index}
	}
	return WildAction{Type: WildActionStruggle}
}

func itemDisplayName(itemID string) string {
	switch itemID {
	case "potion":
		return "Potion"
	case "super_potion":
		return "Super Potion"
	case "hyper_potion":
		return "Hyper Potion"
	case "full_restore":
		return "Full Restore"
	case "antidote":
		return "Antidote"
	case "awakening":
		return "Awakening"
	case "paralyze_heal":
		return "Paralyze Heal"
	case "burn_heal":
		return "Burn Heal"
	case "ice_heal":
		return "Ice Heal"
	case "full_heal":
		return "Full Heal"
	case "x_attack":
		return "X Attack"
	case "x_defense":
		return "X Defense"
	case "x_speed":
		return "X Speed"
	case "x_special":
		return "X Special"
	default:
		return itemID
	}
}

// healItemAmount returns the flat HP restored by a healing item.
// Status cures and X-items have no effect yet.
func healItemAmount(itemID string) (int, bool) {
	if !strings.Contains(itemID, "potion") && itemID != "full_restore" {
		return 0, false
	}
	switch itemID {
	case "potion":
		return 20, true
	case "super_potion":
		return 50, true
	case "hyper_potion":
		return 100, true
	case "full_restore":
		return 999, true
	default:
		return 20, true
	}
}

func ballTypeForItem(ballID string) BallType {
	switch ballID {
	case "great_ball":
		return BallGreat
	case "ultra_ball":
		return BallUltra
	default:
		return BallPoke
	}
}
