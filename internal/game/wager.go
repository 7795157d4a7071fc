package game

import "solo-trivia/internal/domain"

const (
	MinWager = 0
	MaxWager = 3
)

// ClampWager maps any stake into [MinWager, MaxWager].
func ClampWager(amount int) int {
	if amount < MinWager {
		return MinWager
	}
	if amount > MaxWager {
		return MaxWager
	}
	return amount
}

// ResolveWager wins or loses the stake outright. X2 and the streak bonus do
// not apply, and the streak is left as it was.
func ResolveWager(player domain.PlayerState, wager domain.WagerState, outcome domain.Outcome) (domain.PlayerState, int, error) {
	amount := ClampWager(wager.Amount)
	var delta int
	switch outcome {
	case domain.OutcomeCorrect:
		delta = amount
	case domain.OutcomeWrong:
		delta = -amount
	default:
		return player, 0, domain.ErrUnknownOutcome
	}
	player.Score += delta
	return player, delta, nil
}
