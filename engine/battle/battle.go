// Package battle implements the per-event battle subsystem: enemy state,
// the damage formula, and the attack/defend/escape actions.
//
// Battle rounds never write player stats directly. Player damage is
// reported in the Result and fed back through the effect resolver, which
// stays the single writer of player state. Only the transient BattleState
// (enemy HP, round flags) is mutated here.
package battle

import (
	"fmt"

	"github.com/hyluen/fateloom/types"
)

// DefaultEscapeChance is the probability an escape attempt succeeds.
const DefaultEscapeChance = 0.5

// Roller provides the escape roll. *engine.RNG satisfies it.
type Roller interface {
	Chance(p float64) bool
}

// Result is the outcome of one battle round.
type Result struct {
	Messages     []string
	Over         bool
	Victory      bool
	Escaped      bool
	PlayerDamage int // to be applied through the effect resolver
	EnemyDamage  int
}

// Start initializes battle state from a battle event's enemy definition.
func Start(s *types.State, ev types.Event) []string {
	enemy := types.Enemy{Name: "unknown foe", HP: 1}
	if ev.Enemy != nil {
		enemy = *ev.Enemy
	}
	s.Battle = &types.BattleState{
		EventID: ev.ID,
		Enemy:   enemy,
		MaxHP:   enemy.HP,
		Active:  true,
	}
	return []string{fmt.Sprintf("Battle begins: %s (HP %d, ATK %d, DEF %d)",
		enemy.Name, enemy.HP, enemy.Atk, enemy.Def)}
}

// Active reports whether a battle is in progress.
func Active(s *types.State) bool {
	return s.Battle != nil && s.Battle.Active
}

// Clear drops any battle state.
func Clear(s *types.State) {
	s.Battle = nil
}

// Damage is the basic formula: attack minus defense, never below 1.
func Damage(atk, def int) int {
	d := atk - def
	if d < 1 {
		d = 1
	}
	return d
}

// Perform executes one round of battle for the given action and returns
// the outcome. Unknown actions cost the round: the player hesitates and
// the enemy attacks freely.
func Perform(s *types.State, action string, rng Roller) Result {
	if !Active(s) {
		return Result{
			Messages: []string{"There is no battle underway."},
			Over:     true,
		}
	}

	bs := s.Battle
	enemy := &bs.Enemy
	var res Result

	switch action {
	case "attack":
		res.EnemyDamage = Damage(s.Atk, enemy.Def)
		enemy.HP -= res.EnemyDamage
		if enemy.HP < 0 {
			enemy.HP = 0
		}
		res.Messages = append(res.Messages,
			fmt.Sprintf("You deal %d damage to %s!", res.EnemyDamage, enemy.Name),
			fmt.Sprintf("%s has %d/%d HP left.", enemy.Name, enemy.HP, bs.MaxHP))

		if enemy.HP == 0 {
			res.Messages = append(res.Messages, fmt.Sprintf("%s is struck down!", enemy.Name))
			res.Over = true
			res.Victory = true
		} else {
			res.PlayerDamage = Damage(enemy.Atk, s.Def)
			res.Messages = append(res.Messages,
				fmt.Sprintf("%s counterattacks for %d damage!", enemy.Name, res.PlayerDamage))
		}

	case "defend":
		// Defending doubles effective defense for the round.
		effective := s.Def * 2
		dmg := enemy.Atk - effective
		if dmg < 0 {
			dmg = 0
		}
		res.PlayerDamage = dmg
		res.Messages = append(res.Messages, fmt.Sprintf("You brace yourself, absorbing %d damage.", s.Def))
		if dmg > 0 {
			res.Messages = append(res.Messages, fmt.Sprintf("%s still deals %d damage.", enemy.Name, dmg))
		} else {
			res.Messages = append(res.Messages, fmt.Sprintf("You fully block %s's attack.", enemy.Name))
		}

	case "escape":
		if rng.Chance(DefaultEscapeChance) {
			res.Messages = append(res.Messages, "You break away from the fight!")
			res.Over = true
			res.Escaped = true
		} else {
			res.PlayerDamage = Damage(enemy.Atk, s.Def)
			res.Messages = append(res.Messages,
				"You fail to escape!",
				fmt.Sprintf("%s presses the attack for %d damage!", enemy.Name, res.PlayerDamage))
		}

	default:
		res.PlayerDamage = Damage(enemy.Atk, s.Def)
		res.Messages = append(res.Messages,
			"You hesitate, doing nothing.",
			fmt.Sprintf("%s deals %d damage!", enemy.Name, res.PlayerDamage))
	}

	if res.Over {
		bs.Active = false
		bs.Victory = res.Victory
		bs.Escaped = res.Escaped
	}

	return res
}
