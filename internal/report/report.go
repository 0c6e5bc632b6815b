package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/spellbee/internal/leaderboard"
	"github.com/verte-zerg/spellbee/internal/ledger"
	"github.com/verte-zerg/spellbee/internal/wordset"
)

// StreakShown is the shortest best streak worth showing.
const StreakShown = 3

// Options controls output layout. A zero Width means the terminal width.
type Options struct {
	Width int
}

func (o Options) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return terminalWidth()
}

// RenderMistakes prints the tracked words of a set, most missed first.
func RenderMistakes(w io.Writer, set wordset.Set, entries []ledger.Entry, threshold int, opts Options) error {
	title := set.Title
	if title == "" {
		title = set.ID
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "No mistakes tracked for %s.\n", title)
		return err
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Word,
			strconv.Itoa(e.Count),
			fmt.Sprintf("%d/%d", e.Streak, threshold),
			set.Translation(e.Word),
		})
	}
	lines := formatTable([]string{"Word", "Misses", "Streak", "Translation"}, rows, map[int]bool{1: true, 2: true})
	return writeSection(w, fmt.Sprintf("Mistakes: %s (%d)", title, len(entries)), fitLines(lines, opts.width()))
}

// RenderLeaderboard prints a ranked board. The row of player, if present, is
// marked.
func RenderLeaderboard(w io.Writer, title string, entries []leaderboard.Entry, player string, opts Options) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "No scores yet for %s.\n", title)
		return err
	}
	playerKey := strings.ToLower(strings.TrimSpace(player))
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		name := e.Nickname
		if playerKey != "" && strings.ToLower(e.Nickname) == playerKey {
			name += " (you)"
		}
		streak := ""
		if e.BestStreak >= StreakShown {
			streak = fmt.Sprintf("🔥 %d", e.BestStreak)
		}
		rows = append(rows, []string{
			Rank(i + 1),
			name,
			fmt.Sprintf("%d/%d", e.Score, e.Total),
			Percent(e.Percent()),
			streak,
		})
	}
	lines := formatTable([]string{"#", "Player", "Score", "%", "Streak"}, rows, map[int]bool{2: true, 3: true})
	return writeSection(w, "Leaderboard: "+title, fitLines(lines, opts.width()))
}

// Rank returns a medal for the top three places and "N." otherwise.
func Rank(place int) string {
	switch place {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return strconv.Itoa(place) + "."
	}
}

// Percent formats a [0, 1] share as a rounded percentage.
func Percent(share float64) string {
	return fmt.Sprintf("%.0f%%", share*100)
}

func writeSection(w io.Writer, title string, lines []string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSets lists the sets of a catalog. The set marked current is starred.
func RenderSets(w io.Writer, sets []wordset.Set, current string, opts Options) error {
	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		mark := ""
		if s.ID == current {
			mark = "*"
		}
		rows = append(rows, []string{mark, s.ID, s.Title, strconv.Itoa(len(s.Words)), s.Description})
	}
	lines := formatTable([]string{"", "ID", "Title", "Words", "Description"}, rows, map[int]bool{3: true})
	return writeSection(w, fmt.Sprintf("Word sets (%d)", len(sets)), fitLines(lines, opts.width()))
}
