package coordinator

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Kargones/rankmgr/internal/severity"

	"github.com/charmbracelet/lipgloss"
)

// Форматы времени в сообщениях таймеров.
const (
	timestampLayout = "2006-01-02 15:04:05"
)

// formatter строит строки вида "Rank <r>: [<TAG>]: <message>".
// Цвет зависит от профиля renderer-а: для не-TTY writer-а текст без escape-кодов.
type formatter struct {
	rank lipgloss.Style
	tags [severity.Count]lipgloss.Style
}

func newFormatter(r *lipgloss.Renderer) *formatter {
	f := &formatter{rank: r.NewStyle().Bold(true)}
	for _, s := range severity.All() {
		f.tags[s] = r.NewStyle().Foreground(lipgloss.Color(s.Color()))
	}
	return f
}

// defaultRenderer определяет цветовой профиль по самому writer-у.
func defaultRenderer(w io.Writer) *lipgloss.Renderer {
	return lipgloss.NewRenderer(w)
}

func (f *formatter) line(rank int, s severity.Severity, msg string) string {
	var b strings.Builder
	b.WriteString(f.rank.Render("Rank " + strconv.Itoa(rank) + ":"))
	b.WriteByte(' ')
	b.WriteString(f.tags[s].Render("[" + s.Tag() + "]"))
	b.WriteString(": ")
	b.WriteString(msg)
	b.WriteByte('\n')
	return b.String()
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// formatDuration печатает длительность как HH:MM:SS.mmm.
// Часы не ограничены 24.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
