package game

import "solo-trivia/internal/domain"

// CanArmX2 reports whether the token can be armed for the question at index.
// It is never armable on the final question.
func CanArmX2(x domain.X2State, stage domain.Stage, index, lastIndex int) bool {
	return x.Available && stage == domain.StageCategory && index != lastIndex
}

// ArmX2 spends the token on index. The token is left unchanged when it
// cannot be armed.
func ArmX2(x domain.X2State, stage domain.Stage, index, lastIndex int) (domain.X2State, bool) {
	if !CanArmX2(x, stage, index, lastIndex) {
		return x, false
	}
	armed := index
	return domain.X2State{Available: false, ArmedIndex: &armed}, true
}

// X2Active reports whether the token was armed for index.
func X2Active(x domain.X2State, index int) bool {
	return x.ArmedIndex != nil && *x.ArmedIndex == index
}
