package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/spellbee/internal/leaderboard"
	"github.com/verte-zerg/spellbee/internal/ledger"
	"github.com/verte-zerg/spellbee/internal/wordset"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Word", "Misses", "Streak"}
	rows := [][]string{
		{"cat", "12", "0/3"},
		{"of course", "3", "2/3"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	want := []string{
		"Word       Misses  Streak",
		"cat            12     0/3",
		"of course       3     2/3",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
}

func TestDisplayWidthCountsWideRunes(t *testing.T) {
	if got := displayWidth("🥇"); got != 2 {
		t.Fatalf("expected medal width 2, got %d", got)
	}
	if got := displayWidth("猫"); got != 2 {
		t.Fatalf("expected CJK width 2, got %d", got)
	}
}

func TestFitLinesTruncates(t *testing.T) {
	got := fitLines([]string{"abcdefghij", "abc"}, 6)
	if diff := cmp.Diff([]string{"abcde…", "abc"}, got); diff != "" {
		t.Fatalf("unexpected lines (-want +got):\n%s", diff)
	}
}

func TestRenderMistakes(t *testing.T) {
	set := wordset.Set{ID: "week-1", Title: "Week 1", Translations: map[string]string{"rhythm": "rytmus"}}
	entries := []ledger.Entry{
		{Word: "rhythm", Record: ledger.Record{Count: 4, Streak: 1}},
		{Word: "cat", Record: ledger.Record{Count: 1}},
	}
	var buf bytes.Buffer
	if err := RenderMistakes(&buf, set, entries, 3, Options{Width: 120}); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "Mistakes: Week 1 (2)" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "rhythm") || !strings.Contains(lines[2], "1/3") || !strings.HasSuffix(lines[2], "rytmus") {
		t.Fatalf("unexpected row %q", lines[2])
	}

	buf.Reset()
	if err := RenderMistakes(&buf, wordset.Set{ID: "week-2"}, nil, 3, Options{Width: 120}); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if buf.String() != "No mistakes tracked for week-2.\n" {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}

func TestRenderLeaderboard(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	entries := []leaderboard.Entry{
		{Nickname: "Bob", Score: 9, Total: 10, BestStreak: 5, SubmittedAt: at},
		{Nickname: "Ada", Score: 2, Total: 3, BestStreak: 2, SubmittedAt: at},
		{Nickname: "Cy", Score: 1, Total: 2, SubmittedAt: at},
		{Nickname: "Di", Score: 1, Total: 4, SubmittedAt: at},
	}
	var buf bytes.Buffer
	if err := RenderLeaderboard(&buf, "Week 1", entries, " ada", Options{Width: 120}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Leaderboard: Week 1", "🥇", "🔥 5", "90%", "Ada (you)", "67%", "4.", "25%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "🔥 2") {
		t.Fatalf("short streaks must be hidden:\n%s", out)
	}
}

func TestRank(t *testing.T) {
	got := []string{Rank(1), Rank(2), Rank(3), Rank(4), Rank(12)}
	want := []string{"🥇", "🥈", "🥉", "4.", "12."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected ranks (-want +got):\n%s", diff)
	}
}

func TestRenderSets(t *testing.T) {
	sets := []wordset.Set{
		{ID: "starter", Title: "Starter words", Words: []string{"a", "b"}},
		{ID: "tricky", Title: "Tricky", Words: []string{"c"}, Description: "Contractions"},
	}
	var buf bytes.Buffer
	if err := RenderSets(&buf, sets, "tricky", Options{Width: 120}); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 || lines[0] != "Word sets (2)" {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[3], "*  tricky") || !strings.HasSuffix(lines[3], "Contractions") {
		t.Fatalf("unexpected current row %q", lines[3])
	}
	if !strings.HasPrefix(lines[2], "   starter") {
		t.Fatalf("unexpected row %q", lines[2])
	}
}
