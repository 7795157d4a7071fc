package cli

import (
	"solo-trivia/internal/domain"
	"solo-trivia/internal/infra/file"
)

// sampleQuestions is served when no question file or database is configured.
func sampleQuestions() map[string][]domain.Question {
	return map[string][]domain.Question{
		file.DefaultSetID: {
			{Order: 1, Category: "Geography", Points: 1, Prompt: "What is the capital of Australia?", Answer: "Canberra", Fact: "Canberra was purpose-built as a compromise between Sydney and Melbourne."},
			{Order: 2, Category: "Science", Points: 1, Prompt: "What gas do plants absorb from the air?", Answer: "Carbon dioxide"},
			{Order: 3, Category: "History", Points: 2, Prompt: "In which year did the Berlin Wall fall?", Answer: "1989"},
			{Order: 4, Category: "Music", Points: 1, Prompt: "Which composer wrote the Moonlight Sonata?", Answer: "Ludwig van Beethoven",
				Media: &domain.Media{Kind: domain.MediaAudio, Src: "/media/moonlight.mp3", Type: "audio/mpeg"}},
			{Order: 5, Category: "Space", Points: 2, Prompt: "Which planet has the most known moons?", Answer: "Saturn"},
			{Order: 6, Category: "Final", Points: 1, Prompt: "What is the longest river in Africa?", Answer: "The Nile", Fact: "It flows through eleven countries."},
		},
	}
}
