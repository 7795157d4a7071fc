package game

import "solo-trivia/internal/domain"

const (
	// StreakBonusThreshold is the streak length from which the bonus applies.
	StreakBonusThreshold = 3
	// StreakBonusPoints is flat and never multiplied by X2.
	StreakBonusPoints = 1
	// X2Multiplier is applied to category points while the token is active.
	X2Multiplier = 2
)

// Award describes the effect of one correct answer.
type Award struct {
	BaseDelta   int
	StreakBonus int
	Streak      int
	X2Applied   bool
}

// Delta is the total score change.
func (a Award) Delta() int {
	return a.BaseDelta + a.StreakBonus
}

// ScoreCorrect applies a correct answer to player. continued reports whether
// the previous recorded outcome was also this player's correct answer.
func ScoreCorrect(player domain.PlayerState, continued bool, points, baseWeight int, x2 bool) (domain.PlayerState, Award) {
	if points < 1 {
		points = 1
	}
	if baseWeight < 1 {
		baseWeight = 1
	}
	multiplier := points
	if x2 {
		multiplier *= X2Multiplier
	}

	streak := 1
	if continued {
		streak = player.Streak + 1
	}
	bonus := 0
	if streak >= StreakBonusThreshold {
		bonus = StreakBonusPoints
	}

	award := Award{
		BaseDelta:   baseWeight * multiplier,
		StreakBonus: bonus,
		Streak:      streak,
		X2Applied:   x2,
	}
	player.Score += award.Delta()
	player.Streak = streak
	if streak > player.MaxStreak {
		player.MaxStreak = streak
	}
	return player, award
}

// ScoreMiss applies a wrong or missing answer: the streak drops to zero and
// the score is unchanged.
func ScoreMiss(player domain.PlayerState) domain.PlayerState {
	player.Streak = 0
	return player
}
