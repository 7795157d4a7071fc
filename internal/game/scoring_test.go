package game

import (
	"testing"

	"solo-trivia/internal/domain"
)

func TestScoreCorrectStreakBonus(t *testing.T) {
	player := domain.PlayerState{Name: "Alice"}
	wantBonus := []int{0, 0, 1, 1, 1}
	continued := false
	for i, want := range wantBonus {
		var award Award
		player, award = ScoreCorrect(player, continued, 1, 1, false)
		continued = true
		if award.Streak != i+1 {
			t.Fatalf("call %d: expected streak %d, got %d", i, i+1, award.Streak)
		}
		if award.StreakBonus != want {
			t.Fatalf("call %d: expected bonus %d, got %d", i, want, award.StreakBonus)
		}
	}
	if player.Score != 8 {
		t.Fatalf("expected score 8 after five correct answers, got %d", player.Score)
	}
	if player.MaxStreak != 5 {
		t.Fatalf("expected max streak 5, got %d", player.MaxStreak)
	}
}

func TestScoreCorrectX2DoesNotDoubleBonus(t *testing.T) {
	player := domain.PlayerState{Streak: 2, MaxStreak: 2}
	player, award := ScoreCorrect(player, true, 2, 1, true)
	if award.BaseDelta != 4 {
		t.Fatalf("expected base delta 4, got %d", award.BaseDelta)
	}
	if award.StreakBonus != 1 || award.Delta() != 5 {
		t.Fatalf("expected +1 bonus for a total of 5, got %+v", award)
	}
	if player.Score != 5 {
		t.Fatalf("expected score 5, got %d", player.Score)
	}
}

func TestScoreCorrectRestartsStreakWhenNotContinued(t *testing.T) {
	player := domain.PlayerState{Streak: 4, MaxStreak: 4}
	player, award := ScoreCorrect(player, false, 1, 1, false)
	if award.Streak != 1 || player.Streak != 1 {
		t.Fatalf("expected fresh streak of 1, got %d", player.Streak)
	}
	if player.MaxStreak != 4 {
		t.Fatalf("max streak must not shrink, got %d", player.MaxStreak)
	}
}

func TestScoreCorrectDefaultsWeightAndPoints(t *testing.T) {
	_, award := ScoreCorrect(domain.PlayerState{}, false, 0, 0, false)
	if award.BaseDelta != 1 {
		t.Fatalf("expected defaults to yield 1, got %d", award.BaseDelta)
	}
	_, award = ScoreCorrect(domain.PlayerState{}, false, 3, 2, false)
	if award.BaseDelta != 6 {
		t.Fatalf("expected weight 2 on 3 points to yield 6, got %d", award.BaseDelta)
	}
}

func TestScoreMissResetsStreak(t *testing.T) {
	for _, streak := range []int{0, 1, 7} {
		player := ScoreMiss(domain.PlayerState{Score: 9, Streak: streak, MaxStreak: 7})
		if player.Streak != 0 {
			t.Fatalf("expected streak reset from %d, got %d", streak, player.Streak)
		}
		if player.Score != 9 || player.MaxStreak != 7 {
			t.Fatalf("miss must not touch score or max streak, got %+v", player)
		}
	}
}

func TestClampWager(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 2: 2, 3: 3, 99: 3}
	for in, want := range cases {
		if got := ClampWager(in); got != want {
			t.Fatalf("ClampWager(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestResolveWager(t *testing.T) {
	player := domain.PlayerState{Score: 15, Streak: 2}
	won, delta, err := ResolveWager(player, domain.WagerState{Amount: 2}, domain.OutcomeCorrect)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if won.Score != 17 || delta != 2 {
		t.Fatalf("expected 17 (+2), got %d (%+d)", won.Score, delta)
	}
	if won.Streak != 2 {
		t.Fatalf("wager must not touch the streak, got %d", won.Streak)
	}

	lost, delta, _ := ResolveWager(player, domain.WagerState{Amount: 2}, domain.OutcomeWrong)
	if lost.Score != 13 || delta != -2 {
		t.Fatalf("expected 13 (-2), got %d (%+d)", lost.Score, delta)
	}

	if _, _, err := ResolveWager(player, domain.WagerState{}, domain.OutcomeNone); err != domain.ErrUnknownOutcome {
		t.Fatalf("expected unknown outcome error, got %v", err)
	}
}

func TestX2Helpers(t *testing.T) {
	x2 := domain.X2State{Available: true}
	if CanArmX2(x2, domain.StageCategory, 3, 3) {
		t.Fatalf("token must not be armable on the final question")
	}
	if CanArmX2(x2, domain.StageQuestion, 1, 3) {
		t.Fatalf("token must only be armable in the category stage")
	}
	armed, ok := ArmX2(x2, domain.StageCategory, 1, 3)
	if !ok || armed.Available || armed.ArmedIndex == nil || *armed.ArmedIndex != 1 {
		t.Fatalf("expected token armed for index 1, got %+v", armed)
	}
	if _, ok := ArmX2(armed, domain.StageCategory, 2, 3); ok {
		t.Fatalf("token must not be armed twice")
	}
	if !X2Active(armed, 1) || X2Active(armed, 2) {
		t.Fatalf("token must only be active for its armed index")
	}
}
