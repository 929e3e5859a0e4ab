// Package terminal renders cards, sessions and deck statistics as text.
package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/session"
)

// ShortIDLen is how many characters of a card id are displayed.
const ShortIDLen = 8

// Renderer turns state into display strings. It never writes.
type Renderer struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	good    lipgloss.Style
	panel   lipgloss.Style
	levels  map[domain.Difficulty]lipgloss.Style
	barSize int
}

// New returns a Renderer using r for color detection.
func New(r *lipgloss.Renderer, color bool) *Renderer {
	plain := r.NewStyle()
	rd := &Renderer{
		title:   plain.Bold(true),
		muted:   plain,
		accent:  plain,
		good:    plain,
		panel:   plain.Border(lipgloss.RoundedBorder()).Padding(0, 1),
		barSize: 24,
		levels: map[domain.Difficulty]lipgloss.Style{
			domain.Easy:   plain,
			domain.Medium: plain,
			domain.Hard:   plain,
		},
	}
	if color {
		rd.muted = plain.Foreground(lipgloss.Color("8"))
		rd.accent = plain.Foreground(lipgloss.Color("4"))
		rd.good = plain.Foreground(lipgloss.Color("2"))
		rd.levels[domain.Easy] = plain.Foreground(lipgloss.Color("2"))
		rd.levels[domain.Medium] = plain.Foreground(lipgloss.Color("3"))
		rd.levels[domain.Hard] = plain.Foreground(lipgloss.Color("1"))
	}
	return rd
}

// ShortID truncates an id for display.
func ShortID(id string) string {
	if len(id) > ShortIDLen {
		return id[:ShortIDLen]
	}
	return id
}

// CardList renders one line per card. Study statistics are only shown for
// cards that have been studied.
func (r *Renderer) CardList(cards []domain.Flashcard) string {
	if len(cards) == 0 {
		return r.muted.Render("no cards")
	}
	lines := make([]string, 0, len(cards))
	for _, c := range cards {
		line := fmt.Sprintf("%s  %s  %s  %s",
			r.muted.Render(ShortID(c.ID)),
			r.difficulty(c.Difficulty),
			r.accent.Render("["+c.Category+"]"),
			truncate(c.Front, 60),
		)
		if c.Studied() {
			line += r.muted.Render(fmt.Sprintf("  studied %d× · %d%%", c.TimesStudied, c.Accuracy()))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Categories renders the category list with card counts, marking the
// selected one.
func (r *Renderer) Categories(categories []string, count func(string) int, selected string) string {
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		marker := "  "
		if c == selected {
			marker = r.good.Render("▸ ")
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", marker, c, r.muted.Render(fmt.Sprintf("(%d)", count(c)))))
	}
	return strings.Join(lines, "\n")
}

// Stats renders the deck dashboard.
func (r *Renderer) Stats(s domain.DeckStats) string {
	return r.panel.Render(strings.Join([]string{
		r.title.Render("Deck"),
		fmt.Sprintf("Total cards   %d", s.TotalCards),
		fmt.Sprintf("Studied       %d", s.StudiedCards),
		fmt.Sprintf("Categories    %d", s.Categories),
		fmt.Sprintf("Avg accuracy  %d%%", s.AverageAccuracy),
	}, "\n"))
}

// Front renders the question side of the current card with the progress header.
func (r *Renderer) Front(c domain.Flashcard, p session.Progress) string {
	return r.panel.Render(strings.Join([]string{
		r.ProgressLine(p),
		"",
		r.accent.Render("["+c.Category+"]") + " " + r.difficulty(c.Difficulty),
		r.title.Render(c.Front),
	}, "\n"))
}

// Back renders the answer side of a card.
func (r *Renderer) Back(c domain.Flashcard) string {
	return r.panel.Render(r.muted.Render("Answer") + "\n" + c.Back)
}

// ProgressLine renders "Card n of m", a bar, the running score and elapsed time.
func (r *Renderer) ProgressLine(p session.Progress) string {
	return fmt.Sprintf("Card %d of %d  %s  Correct: %d/%d  %s",
		p.Position(), p.Total,
		ProgressBar(p.Position(), p.Total, r.barSize),
		p.Correct, p.Studied,
		FormatElapsed(p.Elapsed),
	)
}

// Summary renders the end-of-session panel.
func (r *Renderer) Summary(s domain.StudySession, elapsed time.Duration) string {
	return r.panel.Render(strings.Join([]string{
		r.title.Render("Session Complete!"),
		fmt.Sprintf("Cards    %d", s.TotalCards),
		r.good.Render(fmt.Sprintf("Accuracy %d%%", s.Accuracy())),
		fmt.Sprintf("%d correct out of %d", s.CorrectAnswers, s.TotalCards),
		r.muted.Render("Time     " + FormatElapsed(elapsed)),
	}, "\n"))
}

func (r *Renderer) difficulty(d domain.Difficulty) string {
	style, ok := r.levels[d]
	if !ok {
		return string(d)
	}
	return style.Render(string(d))
}

// ProgressBar renders a bar of the given width followed by a percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := min(done*width/total, width)
	pct := domain.Accuracy(done, total)
	return fmt.Sprintf("%s %3d%%", strings.Repeat("█", filled)+strings.Repeat("░", width-filled), pct)
}

// FormatElapsed renders a duration as m:ss.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
