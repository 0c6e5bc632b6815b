// Package tui provides the Bubble Tea spelling quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/spellbee/internal/hint"
	"github.com/verte-zerg/spellbee/internal/kv"
	"github.com/verte-zerg/spellbee/internal/leaderboard"
	"github.com/verte-zerg/spellbee/internal/quiz"
	"github.com/verte-zerg/spellbee/internal/report"
)

// AdvanceDelay is how long a solved word stays on screen.
const AdvanceDelay = 900 * time.Millisecond

const (
	streakBanner = 3
	boardTimeout = 5 * time.Second
	pillLimit    = 8
)

var praise = []string{
	"Great job!",
	"Excellent!",
	"Perfect!",
	"Well done!",
	"Fantastic!",
	"Brilliant!",
}

type screen int

const (
	screenWelcome screen = iota
	screenQuiz
	screenFinal
)

type saveState int

const (
	saveIdle saveState = iota
	saveEditing
	saveSending
	saveDone
	saveFailed
)

type action int

const (
	actionPlay action = iota
	actionMistakes
	actionSave
	actionQuit
)

type menuItem struct {
	label  string
	action action
}

type advanceMsg struct {
	seq int
}

type submittedMsg struct {
	err error
}

type boardMsg struct {
	entries []leaderboard.Entry
	err     error
}

// Options wires the collaborators of the UI. Only Session is required.
type Options struct {
	Session  *quiz.Session
	Reporter *leaderboard.Reporter
	Board    leaderboard.Board
	Prefs    kv.Store
	Nickname string
	Logger   *zap.Logger
	Rand     *rand.Rand
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	session  *quiz.Session
	reporter *leaderboard.Reporter
	board    leaderboard.Board
	prefs    kv.Store
	log      *zap.Logger
	rnd      *rand.Rand

	width  int
	height int

	screen  screen
	menu    []menuItem
	cursor  int
	notice  string
	input   textinput.Model
	nick    textinput.Model
	last    quiz.Result
	message string
	seq     int

	save     saveState
	saveErr  string
	player   string
	entries  []leaderboard.Entry
	boardErr string
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	titleStyle     = accentStyle.Copy().Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	selectedStyle  = accentStyle.Copy().Underline(true)
	pillStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#5C3D2E")).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the quiz UI on the welcome screen.
func NewModel(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = quiz.NewRand()
	}

	input := textinput.New()
	input.Placeholder = "type what you hear"
	input.CharLimit = 64
	input.Width = 32

	nick := textinput.New()
	nick.Placeholder = "nickname"
	nick.CharLimit = leaderboard.MaxNicknameLen
	nick.Width = leaderboard.MaxNicknameLen + 1

	player := strings.TrimSpace(opts.Nickname)
	if player == "" {
		player = leaderboard.LoadNickname(opts.Prefs)
	}

	m := &Model{
		session:  opts.Session,
		reporter: opts.Reporter,
		board:    opts.Board,
		prefs:    opts.Prefs,
		log:      log,
		rnd:      rnd,
		input:    input,
		nick:     nick,
		player:   player,
	}
	m.showWelcome()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadBoard())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case advanceMsg:
		if msg.seq != m.seq || m.screen != screenQuiz {
			return m, nil
		}
		return m, m.advance()
	case submittedMsg:
		return m, m.handleSubmitted(msg.err)
	case boardMsg:
		m.entries = msg.entries
		m.boardErr = ""
		if msg.err != nil {
			m.boardErr = "Leaderboard unavailable"
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenQuiz:
			return m, m.updateQuiz(msg)
		default:
			return m, m.updateMenu(msg)
		}
	}
	return m, m.forwardInput(msg)
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenQuiz:
		content = m.viewQuiz()
	case screenFinal:
		content = m.viewFinal()
	default:
		content = m.viewWelcome()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := footerStyle.Render(m.renderFooter())
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) forwardInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.screen == screenQuiz:
		m.input, cmd = m.input.Update(msg)
	case m.save == saveEditing:
		m.nick, cmd = m.nick.Update(msg)
	}
	return cmd
}

func (m *Model) showWelcome() tea.Cmd {
	m.screen = screenWelcome
	m.cursor = 0
	m.menu = []menuItem{{label: "Start spelling", action: actionPlay}}
	if n := len(m.session.Mistakes()); n > 0 {
		m.menu = append(m.menu, menuItem{label: fmt.Sprintf("Practice Mistakes (%d)", n), action: actionMistakes})
	}
	m.menu = append(m.menu, menuItem{label: "Quit", action: actionQuit})
	return m.loadBoard()
}

func (m *Model) showFinal() tea.Cmd {
	m.screen = screenFinal
	m.input.Blur()
	m.cursor = 0
	m.save = saveIdle
	m.saveErr = ""
	m.menu = []menuItem{{label: "Play again", action: actionPlay}}
	if n := len(m.session.Mistakes()); n > 0 {
		m.menu = append(m.menu, menuItem{label: fmt.Sprintf("Practice Mistakes (%d)", n), action: actionMistakes})
	}
	if m.canSave() {
		m.menu = append(m.menu, menuItem{label: "Save score", action: actionSave})
	}
	m.menu = append(m.menu, menuItem{label: "Quit", action: actionQuit})
	return m.loadBoard()
}

func (m *Model) canSave() bool {
	return m.reporter.Enabled() && m.session.Summary().Score > 0
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	if m.save == saveEditing {
		return m.updateNickname(msg)
	}
	switch msg.Type {
	case tea.KeyUp, tea.KeyShiftTab:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown, tea.KeyTab:
		if m.cursor < len(m.menu)-1 {
			m.cursor++
		}
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyEnter:
		if len(m.menu) == 0 {
			return nil
		}
		return m.choose(m.menu[m.cursor].action)
	case tea.KeyRunes:
		switch string(msg.Runes) {
		case "q":
			return tea.Quit
		case "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j":
			if m.cursor < len(m.menu)-1 {
				m.cursor++
			}
		}
	}
	return nil
}

func (m *Model) choose(a action) tea.Cmd {
	switch a {
	case actionPlay:
		return m.start(quiz.ModeAll)
	case actionMistakes:
		return m.start(quiz.ModeMistakes)
	case actionSave:
		m.save = saveEditing
		m.saveErr = ""
		m.nick.SetValue(m.player)
		m.nick.CursorEnd()
		return m.nick.Focus()
	case actionQuit:
		return tea.Quit
	}
	return nil
}

func (m *Model) start(mode quiz.Mode) tea.Cmd {
	if err := m.session.StartSetRound(mode); err != nil {
		if errors.Is(err, quiz.ErrNoMistakes) {
			m.notice = "No mistakes to practice. Nice!"
		} else {
			m.notice = err.Error()
		}
		m.log.Warn("round not started", zap.Error(err))
		return nil
	}
	m.notice = ""
	m.screen = screenQuiz
	m.last = quiz.Result{}
	m.message = ""
	m.seq++
	m.input.Reset()
	return m.input.Focus()
}

func (m *Model) updateQuiz(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		return m.showWelcome()
	case tea.KeyCtrlR:
		m.session.Repeat(false)
		return nil
	case tea.KeyCtrlS:
		m.session.Repeat(true)
		return nil
	case tea.KeyEnter:
		if m.last.Resolved() {
			return m.advance()
		}
		return m.submit()
	}
	if m.last.Resolved() {
		return nil
	}
	return m.forwardInput(msg)
}

func (m *Model) submit() tea.Cmd {
	res := m.session.SubmitGuess(m.input.Value())
	if res.Outcome == quiz.OutcomeIgnored {
		return nil
	}
	m.last = res
	m.message = m.resultMessage(res)
	m.log.Debug("guess",
		zap.Int("attempt", res.Attempt),
		zap.Int("outcome", int(res.Outcome)),
		zap.Bool("mastered", res.Mastered),
	)
	switch res.Outcome {
	case quiz.OutcomeSolved, quiz.OutcomeSolvedOnRetry:
		m.input.Blur()
		m.seq++
		seq := m.seq
		return tea.Tick(AdvanceDelay, func(time.Time) tea.Msg {
			return advanceMsg{seq: seq}
		})
	case quiz.OutcomeRevealed:
		m.input.Blur()
	default:
		m.input.Reset()
	}
	return nil
}

func (m *Model) advance() tea.Cmd {
	m.seq++
	if !m.session.Advance() {
		return nil
	}
	m.last = quiz.Result{}
	m.message = ""
	if m.session.Done() {
		return m.showFinal()
	}
	m.input.Reset()
	return m.input.Focus()
}

func (m *Model) resultMessage(res quiz.Result) string {
	switch res.Outcome {
	case quiz.OutcomeSolved:
		msg := praise[m.rnd.Intn(len(praise))]
		if res.Mastered {
			msg += " Mastered!"
		}
		if res.Streak >= streakBanner {
			msg += fmt.Sprintf(" 🔥 %d in a row!", res.Streak)
		}
		return msg
	case quiz.OutcomeSolvedOnRetry:
		return "Correct! Keep practicing this one."
	case quiz.OutcomeRevealed:
		return "The word was: " + res.Revealed
	case quiz.OutcomeHint:
		if res.Hint != nil {
			return res.Hint.AttemptsText()
		}
	}
	return ""
}

func (m *Model) updateNickname(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.save = saveIdle
		m.nick.Blur()
		return nil
	case tea.KeyEnter:
		name, err := leaderboard.NormalizeNickname(m.nick.Value())
		if err != nil {
			m.saveErr = "Enter a nickname"
			return nil
		}
		m.player = name
		if err := leaderboard.SaveNickname(m.prefs, name); err != nil {
			m.log.Warn("nickname not saved", zap.Error(err))
		}
		m.nick.Blur()
		m.save = saveSending
		m.menu = removeAction(m.menu, actionSave)
		m.cursor = 0
		return m.submitScore(name)
	}
	return m.forwardInput(msg)
}

func (m *Model) submitScore(name string) tea.Cmd {
	sum := m.session.Summary()
	entry := leaderboard.NewEntry(name, sum.Score, sum.Total, sum.BestStreak)
	reporter := m.reporter
	return func() tea.Msg {
		done := make(chan error, 1)
		reporter.Report(sum.SetID, entry, func(err error) { done <- err })
		return submittedMsg{err: <-done}
	}
}

func (m *Model) handleSubmitted(err error) tea.Cmd {
	if err != nil {
		m.save = saveFailed
		m.saveErr = "Could not save score"
		m.menu = insertBefore(m.menu, actionQuit, menuItem{label: "Save score", action: actionSave})
		return nil
	}
	m.save = saveDone
	return m.loadBoard()
}

func (m *Model) loadBoard() tea.Cmd {
	if m.board == nil {
		return nil
	}
	board := m.board
	setID := m.session.Set().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), boardTimeout)
		defer cancel()
		entries, err := board.Top(ctx, setID, leaderboard.DefaultTop)
		return boardMsg{entries: entries, err: err}
	}
}

func removeAction(items []menuItem, a action) []menuItem {
	out := items[:0:0]
	for _, it := range items {
		if it.action != a {
			out = append(out, it)
		}
	}
	return out
}

// insertBefore places item ahead of the first entry with action a, or at
// the end when there is none.
func insertBefore(items []menuItem, a action, item menuItem) []menuItem {
	out := make([]menuItem, 0, len(items)+1)
	placed := false
	for _, it := range items {
		if !placed && it.action == a {
			out = append(out, item)
			placed = true
		}
		out = append(out, it)
	}
	if !placed {
		out = append(out, item)
	}
	return out
}

func (m *Model) viewWelcome() string {
	set := m.session.Set()
	lines := []string{titleStyle.Render("Spellbee"), ""}
	title := set.Title
	if title == "" {
		title = set.ID
	}
	lines = append(lines, accentStyle.Render(title))
	if set.Description != "" {
		lines = append(lines, pendingStyle.Render(set.Description))
	}
	lines = append(lines, pendingStyle.Render(fmt.Sprintf("%d words", len(set.Words))), "")
	if pills := renderPills(m.session.Mistakes()); pills != "" {
		lines = append(lines, "Words to practice:", pills, "")
	}
	lines = append(lines, m.renderMenu()...)
	if board := m.renderBoard(); len(board) > 0 {
		lines = append(lines, "")
		lines = append(lines, board...)
	}
	if m.notice != "" {
		lines = append(lines, "", accentStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func renderPills(words []string) string {
	if len(words) == 0 {
		return ""
	}
	shown := words
	if len(shown) > pillLimit {
		shown = shown[:pillLimit]
	}
	pills := make([]string, 0, len(shown)+1)
	for _, w := range shown {
		pills = append(pills, pillStyle.Render(w))
	}
	if rest := len(words) - len(shown); rest > 0 {
		pills = append(pills, pendingStyle.Render(fmt.Sprintf("+%d more", rest)))
	}
	return strings.Join(pills, " ")
}

func (m *Model) renderMenu() []string {
	lines := make([]string, 0, len(m.menu))
	for i, it := range m.menu {
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+it.label))
			continue
		}
		lines = append(lines, "  "+it.label)
	}
	return lines
}

func (m *Model) viewQuiz() string {
	snap := m.session.Snapshot()
	lines := []string{m.renderStatus(snap), "", "Listen and type the word:", m.input.View(), ""}
	if snap.Translation != "" {
		lines = append(lines, pendingStyle.Render(snap.Translation), "")
	}
	lines = append(lines, m.renderFeedback(snap)...)
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus(snap quiz.Snapshot) string {
	index := snap.Index + 1
	if index > snap.Total {
		index = snap.Total
	}
	segments := []string{
		fmt.Sprintf("Word: %d / %d", index, snap.Total),
		fmt.Sprintf("Score: %d", snap.Score),
	}
	if snap.Streak >= 2 {
		segments = append(segments, fmt.Sprintf("🔥 %d", snap.Streak))
	}
	return strings.Join(segments, " | ")
}

func (m *Model) renderFeedback(snap quiz.Snapshot) []string {
	switch m.last.Outcome {
	case quiz.OutcomeSolved, quiz.OutcomeSolvedOnRetry:
		return []string{successStyle.Render(m.message)}
	case quiz.OutcomeRevealed:
		return []string{incorrectStyle.Render(m.message), pendingStyle.Render("Press Enter to continue")}
	}
	h := snap.Hint
	if h == nil {
		return nil
	}
	var lines []string
	if h.Tier == hint.TierStructural {
		lines = append(lines, accentStyle.Render(h.Summary()))
	} else {
		lines = append(lines, m.renderLetters(h.Letters))
	}
	return append(lines, pendingStyle.Render(h.AttemptsText()))
}

func (m *Model) renderLetters(letters []hint.Letter) string {
	runes := spaceOut(buildHintRunes(letters))
	width := 0
	if m.width > 0 {
		width = int(float64(m.width) * 0.70)
		if width < 1 {
			width = 1
		}
	}
	return wrapStyledRunes(runes, width)
}

func (m *Model) viewFinal() string {
	sum := m.session.Summary()
	lines := []string{titleStyle.Render("Round complete!"), ""}
	lines = append(lines, fmt.Sprintf("Score: %d / %d (%s)", sum.Score, sum.Total, report.Percent(sum.Percent())))
	if sum.BestStreak >= streakBanner {
		lines = append(lines, fmt.Sprintf("Best streak: 🔥 %d", sum.BestStreak))
	}
	if sum.Perfect() {
		lines = append(lines, successStyle.Render("Perfect round!"))
	} else if len(sum.Missed) > 0 {
		lines = append(lines, "", "Practice these:", renderPills(sum.Missed))
	}
	lines = append(lines, "")
	lines = append(lines, m.renderSave()...)
	lines = append(lines, m.renderMenu()...)
	if board := m.renderBoard(); len(board) > 0 {
		lines = append(lines, "")
		lines = append(lines, board...)
	}
	if m.notice != "" {
		lines = append(lines, "", accentStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSave() []string {
	switch m.save {
	case saveEditing:
		lines := []string{"Nickname: " + m.nick.View()}
		if m.saveErr != "" {
			lines = append(lines, incorrectStyle.Render(m.saveErr))
		}
		return append(lines, "")
	case saveSending:
		return []string{pendingStyle.Render("Saving score..."), ""}
	case saveDone:
		return []string{successStyle.Render("Score saved!"), ""}
	case saveFailed:
		return []string{incorrectStyle.Render(m.saveErr), ""}
	}
	return nil
}

func (m *Model) renderBoard() []string {
	if m.boardErr != "" {
		return []string{pendingStyle.Render(m.boardErr)}
	}
	if len(m.entries) == 0 {
		return nil
	}
	lines := []string{accentStyle.Render("Leaderboard")}
	for i, e := range m.entries {
		line := fmt.Sprintf("%s %s  %d/%d  %s", report.Rank(i+1), e.Nickname, e.Score, e.Total, report.Percent(e.Percent()))
		if e.BestStreak >= report.StreakShown {
			line += fmt.Sprintf("  🔥 %d", e.BestStreak)
		}
		if m.player != "" && strings.EqualFold(e.Nickname, m.player) {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m *Model) renderFooter() string {
	switch m.screen {
	case screenQuiz:
		if m.last.Outcome == quiz.OutcomeRevealed {
			return "enter next · ctrl+r repeat · esc menu"
		}
		return "enter check · ctrl+r repeat · ctrl+s slow · esc menu"
	default:
		if m.save == saveEditing {
			return "enter save · esc cancel"
		}
		return "↑/↓ choose · enter select · q quit"
	}
}
