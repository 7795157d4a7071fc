package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"solo-trivia/internal/app"
	"solo-trivia/internal/config"
	"solo-trivia/internal/domain"
	"solo-trivia/internal/logging"
)

type playOptions struct {
	gameID    string
	setID     string
	name      string
	dbPath    string
	questions string
}

// NewPlayCmd runs a round in the terminal. State survives restarts when a
// SQLite path is configured.
func NewPlayCmd(configPath *string) *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a solo round in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.gameID, "game", "local", "game ID to resume or start")
	cmd.Flags().StringVar(&opts.setID, "set", "", "question set ID")
	cmd.Flags().StringVar(&opts.name, "name", "", "player name for a new game")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite file for game state (overrides config)")
	cmd.Flags().StringVar(&opts.questions, "questions", "", "YAML or JSON question file (overrides config)")
	return cmd
}

func runPlay(ctx context.Context, cfg config.Config, opts playOptions, in io.Reader, out io.Writer) error {
	// Local play never touches shared infrastructure.
	cfg.Redis.Addr = ""
	cfg.Postgres.URL = ""
	if opts.dbPath != "" {
		cfg.SQLite.Path = opts.dbPath
	}
	if opts.questions != "" {
		cfg.Questions.File = opts.questions
	}
	if opts.setID != "" {
		cfg.Questions.SetID = opts.setID
	}
	level := cfg.Log.Level
	if level == "" {
		level = "warn"
	}
	logger, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	service := app.NewGameService(b.sessions, b.questions, b.kv, logger, serviceOptions(cfg))
	snap, err := service.Open(ctx, opts.gameID, defaultSetID(cfg), opts.name)
	if err != nil {
		return err
	}
	defer service.Release(context.Background(), opts.gameID)

	p := &player{ctx: ctx, service: service, gameID: opts.gameID, out: out, logger: logger, snap: snap}
	p.render()
	p.run(in)
	return nil
}

type player struct {
	ctx     context.Context
	service *app.GameService
	gameID  string
	out     io.Writer
	logger  *zap.Logger
	snap    domain.Snapshot
}

func (p *player) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(p.out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(p.out, "> ")
			continue
		}
		if quit := p.handle(line); quit {
			return
		}
		fmt.Fprint(p.out, "> ")
	}
}

// handle runs one command line and reports whether to stop.
func (p *player) handle(line string) bool {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	var (
		snap domain.Snapshot
		err  error
	)
	switch name {
	case "q", "quit", "exit":
		return true
	case "h", "help", "?":
		printHelp(p.out)
		return false
	case "results":
		printResults(p.out, p.snap.Results)
		return false
	case "n", "next":
		snap, err = p.service.Next(p.ctx, p.gameID)
	case "p", "prev", "previous":
		snap, err = p.service.Previous(p.ctx, p.gameID)
	case "x2":
		snap, err = p.service.ArmX2(p.ctx, p.gameID)
	case "wager", "bet":
		amount, convErr := strconv.Atoi(arg)
		if convErr != nil {
			fmt.Fprintln(p.out, "usage: wager <0-3>")
			return false
		}
		snap, err = p.service.SetWager(p.ctx, p.gameID, amount)
	case "c", "correct":
		snap, err = p.mark(domain.OutcomeCorrect)
	case "w", "wrong":
		snap, err = p.mark(domain.OutcomeWrong)
	case "s", "skip":
		snap, err = p.service.Award(p.ctx, p.gameID, domain.OutcomeNone)
	case "reset":
		snap, err = p.service.Reset(p.ctx, p.gameID)
	case "name":
		if arg == "" {
			fmt.Fprintln(p.out, "usage: name <player name>")
			return false
		}
		snap, err = p.service.Rename(p.ctx, p.gameID, arg)
	default:
		fmt.Fprintf(p.out, "unknown command %q, type help\n", name)
		return false
	}

	if err != nil {
		p.report(err)
		return false
	}
	p.snap = snap
	p.render()
	return false
}

// mark scores the current question; on the final it settles the wager.
func (p *player) mark(outcome domain.Outcome) (domain.Snapshot, error) {
	if p.snap.IsFinal {
		return p.service.ResolveFinal(p.ctx, p.gameID, outcome)
	}
	return p.service.Award(p.ctx, p.gameID, outcome)
}

func (p *player) report(err error) {
	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		fmt.Fprintf(p.out, "%s not available: %s\n", blocked.Action, blocked.Reason)
		return
	}
	p.logger.Warn("play command failed", zap.Error(err))
	fmt.Fprintf(p.out, "error: %v\n", err)
}

func (p *player) render() {
	snap := p.snap
	w := p.out
	if snap.Total == 0 || snap.Question == nil {
		fmt.Fprintln(w, "No questions loaded.")
		return
	}
	q := snap.Question

	title := fmt.Sprintf("Question %d/%d", snap.Index+1, snap.Total)
	if snap.IsFinal {
		title = fmt.Sprintf("Final question %d/%d", snap.Index+1, snap.Total)
	}
	fmt.Fprintf(w, "\n%s  %s  %s\n", title, q.Category, pointsLabel(q.Points))

	switch snap.Stage {
	case domain.StageCategory, domain.StageFinale:
		fmt.Fprintf(w, "Category: %s\n", q.Category)
		if snap.IsFinal {
			fmt.Fprintf(w, "Wager: %d (0-3)\n", snap.Wager)
		}
	case domain.StageQuestion:
		fmt.Fprintln(w, q.Prompt)
		printMedia(w, q.Media)
	case domain.StageAnswer:
		fmt.Fprintln(w, q.Prompt)
		printMedia(w, q.Media)
		fmt.Fprintf(w, "Answer: %s\n", q.Answer)
		if q.Fact != "" {
			fmt.Fprintf(w, "Fact: %s\n", q.Fact)
		}
		if snap.IsFinal {
			fmt.Fprintf(w, "Wager: %d\n", snap.Wager)
		}
	case domain.StageResults:
		fmt.Fprintln(w, "Game over.")
		printResults(w, snap.Results)
	}

	fmt.Fprintf(w, "%s  score %d  streak %d  best %d  x2 %s\n",
		snap.Player.Name, snap.Player.Score, snap.Player.Streak, snap.Player.MaxStreak, x2Label(snap.X2))
	fmt.Fprintf(w, "actions: %s\n", strings.Join(enabledActions(snap), ", "))
}

func printMedia(w io.Writer, media *domain.Media) {
	if media == nil {
		return
	}
	label := media.Src
	if media.Alt != "" {
		label = media.Alt + " (" + media.Src + ")"
	}
	fmt.Fprintf(w, "[%s] %s\n", media.Kind, label)
}

func printResults(w io.Writer, rows []domain.ResultRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No results yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCategory\tPts\tResult\tx2\tBonus\tDelta\tTotal")
	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%d\t%+d\t%d\n",
			row.Index+1, row.Category, row.Points, resultLabel(row), yesNo(row.X2Applied),
			row.StreakBonusPoints, row.Delta, row.RunningTotal)
	}
	tw.Flush()
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `commands:
  n, next          advance one stage
  p, prev          step back one stage
  x2               double the points of the current question
  wager <0-3>      stake points on the final question
  c, correct       mark the answer correct
  w, wrong         mark the answer wrong
  s, skip          record no answer
  name <name>      rename the player
  results          show the results table
  reset            start over
  q, quit          leave (progress is kept)`)
}

func enabledActions(snap domain.Snapshot) []string {
	var out []string
	a := snap.Actions
	if a.Next.Enabled {
		out = append(out, "next")
	}
	if a.Previous.Enabled {
		out = append(out, "prev")
	}
	if a.ArmX2.Enabled {
		out = append(out, "x2")
	}
	if a.SetWager.Enabled {
		out = append(out, "wager")
	}
	if a.Award.Enabled {
		out = append(out, "correct", "wrong", "skip")
	}
	if a.ResolveFinal.Enabled {
		out = append(out, "correct", "wrong")
	}
	out = append(out, "results", "reset", "quit")
	return out
}

func pointsLabel(points int) string {
	if points == 1 {
		return "1 pt"
	}
	return strconv.Itoa(points) + " pts"
}

func x2Label(x domain.X2View) string {
	switch {
	case x.Active:
		return "armed"
	case x.Available:
		return "ready"
	default:
		return "spent"
	}
}

func resultLabel(row domain.ResultRow) string {
	switch {
	case row.Correct == nil:
		return "none"
	case *row.Correct:
		return "correct"
	default:
		return "wrong"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
