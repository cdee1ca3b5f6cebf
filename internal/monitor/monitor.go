// Package monitor is the terminal dashboard shown while self-play runs.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hailam/chesszero/internal/selfplay"
)

const recentGames = 10

// TickMsg refreshes the counters.
type TickMsg time.Time

type stepMsg selfplay.Step

type closedMsg struct{}

// Model implements tea.Model.
type Model struct {
	counters *selfplay.Counters
	updates  <-chan selfplay.GameUpdate
	steps    <-chan selfplay.Step
	// Extra, when set, adds a line such as inference batching stats.
	Extra func() string

	startTime   time.Time
	games       int
	examples    int
	moves       int64
	evaluations int64
	whiteWins   int
	blackWins   int
	draws       int
	recent      []string
	lastStep    *selfplay.Step
	done        bool
}

// New returns a model reading from a runner's counters and channels. steps
// may be nil.
func New(counters *selfplay.Counters, updates <-chan selfplay.GameUpdate, steps <-chan selfplay.Step) Model {
	return Model{
		counters:  counters,
		updates:   updates,
		steps:     steps,
		startTime: time.Now(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan selfplay.GameUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return u
	}
}

func waitForStep(steps <-chan selfplay.Step) tea.Cmd {
	if steps == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-steps
		if !ok {
			return nil
		}
		return stepMsg(s)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), waitForStep(m.steps), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		if m.counters != nil {
			m.moves = m.counters.Moves.Load()
			m.evaluations = m.counters.Evaluations.Load()
		}
		return m, tickCmd()
	case selfplay.GameUpdate:
		m.games++
		m.examples += msg.Examples
		switch msg.Result.Outcome() {
		case "1-0":
			m.whiteWins++
		case "0-1":
			m.blackWins++
		default:
			m.draws++
		}
		line := fmt.Sprintf("Worker %d: %s in %d plies, %d rows", msg.WorkerID, msg.Result.Outcome(), msg.Result.Plies, msg.Examples)
		if msg.Result.Truncated {
			line += " (ply cap)"
		}
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentGames {
			m.recent = m.recent[:recentGames]
		}
		return m, waitForUpdate(m.updates)
	case stepMsg:
		s := selfplay.Step(msg)
		m.lastStep = &s
		return m, waitForStep(m.steps)
	case closedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	duration := time.Since(m.startTime)
	var gamesPerSec, movesPerSec, evalsPerSec float64
	if secs := duration.Seconds(); secs >= 1 {
		gamesPerSec = float64(m.games) / secs
		movesPerSec = float64(m.moves) / secs
		evalsPerSec = float64(m.evaluations) / secs
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Games Played:   %d (white %d / black %d / draw %d)\n", m.games, m.whiteWins, m.blackWins, m.draws)
	fmt.Fprintf(&b, "Total Examples: %d\n", m.examples)
	fmt.Fprintf(&b, "Total Moves:    %d\n", m.moves)
	fmt.Fprintf(&b, "Evaluations:    %d\n", m.evaluations)
	fmt.Fprintf(&b, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&b, "Games/Sec:      %.2f\n", gamesPerSec)
	fmt.Fprintf(&b, "Moves/Sec:      %.2f\n", movesPerSec)
	fmt.Fprintf(&b, "Evals/Sec:      %.2f\n", evalsPerSec)
	if m.Extra != nil {
		b.WriteString(m.Extra())
		b.WriteString("\n")
	}

	if m.lastStep != nil {
		fmt.Fprintf(&b, "\n%s ply %d: %s\n", m.lastStep.GameID, m.lastStep.Ply+1, m.lastStep.Move)
		b.WriteString(m.lastStep.State.String())
		b.WriteString("\n")
	}

	b.WriteString("\nRecent Games:\n")
	for _, g := range m.recent {
		b.WriteString(g)
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\nAll workers stopped.\n")
	} else {
		b.WriteString("\nPress q to quit.\n")
	}
	return b.String()
}
