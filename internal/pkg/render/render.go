// Package render draws list query states and overview cards as terminal
// text. Colour is applied only when the writer is a terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"storefront/internal/pkg/listquery"
)

// Tone picks the badge colour of a cell.
type Tone int

const (
	ToneNone Tone = iota
	ToneGood
	ToneWarn
	ToneBad
	ToneMuted
)

const skeletonRows = 3

// Column describes one column of a list table.
type Column[T any] struct {
	Header string
	Cell   func(T) string
	// Tone is optional; nil renders the cell unstyled.
	Tone func(T) Tone
}

// Table renders QueryState values of one resource.
type Table[T any] struct {
	// Noun is the plural used in messages, e.g. "orders".
	Noun    string
	Columns []Column[T]
}

// Printer holds the styles bound to an output.
type Printer struct {
	w      io.Writer
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
	tones  map[Tone]lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle()
	return &Printer{
		w:      w,
		title:  base.Bold(true),
		header: base.Bold(true).Padding(0, 1),
		cell:   base.Padding(0, 1),
		muted:  base.Faint(true),
		tones: map[Tone]lipgloss.Style{
			ToneGood:  base.Foreground(lipgloss.Color("#16a34a")),
			ToneWarn:  base.Foreground(lipgloss.Color("#d97706")),
			ToneBad:   base.Foreground(lipgloss.Color("#ff4d4d")),
			ToneMuted: base.Faint(true),
		},
	}
}

// Render writes st. Idle renders nothing.
func (t Table[T]) Render(p *Printer, st listquery.QueryState[T]) error {
	var sb strings.Builder
	switch st.Status {
	case listquery.StatusIdle:
		return nil
	case listquery.StatusLoading:
		t.skeleton(p, &sb)
		sb.WriteString(p.muted.Render(fmt.Sprintf("Loading %s...", t.Noun)))
		sb.WriteString("\n")
	case listquery.StatusError:
		sb.WriteString(p.tones[ToneBad].Render(fmt.Sprintf("Could not load %s: %s", t.Noun, errorText(st.Err))))
		sb.WriteString("\n")
		sb.WriteString(p.muted.Render("Type :refresh to retry."))
		sb.WriteString("\n")
		if st.Data != nil && !st.Data.Empty() {
			sb.WriteString(p.muted.Render("Showing previous results:"))
			sb.WriteString("\n")
			t.rows(p, &sb, st.Data.Items)
			footer(p, &sb, st, t.Noun)
		}
	case listquery.StatusSuccess:
		if st.IsEmpty() {
			sb.WriteString(fmt.Sprintf("No %s found", t.Noun))
			sb.WriteString("\n")
			break
		}
		t.rows(p, &sb, st.Data.Items)
		footer(p, &sb, st, t.Noun)
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}

func (t Table[T]) widths(items []T) []int {
	w := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		w[i] = lipgloss.Width(c.Header)
	}
	for _, it := range items {
		for i, c := range t.Columns {
			if n := lipgloss.Width(c.Cell(it)); n > w[i] {
				w[i] = n
			}
		}
	}
	// 左右各留一格 padding
	for i := range w {
		w[i] += 2
	}
	return w
}

func (t Table[T]) headerLine(p *Printer, sb *strings.Builder, widths []int) {
	for i, c := range t.Columns {
		sb.WriteString(p.header.Width(widths[i]).Render(strings.ToUpper(c.Header)))
	}
	sb.WriteString("\n")
}

func (t Table[T]) rows(p *Printer, sb *strings.Builder, items []T) {
	widths := t.widths(items)
	t.headerLine(p, sb, widths)
	for _, it := range items {
		for i, c := range t.Columns {
			style := p.cell
			if c.Tone != nil {
				if ts, ok := p.tones[c.Tone(it)]; ok {
					style = style.Inherit(ts)
				}
			}
			sb.WriteString(style.Width(widths[i]).Render(c.Cell(it)))
		}
		sb.WriteString("\n")
	}
}

func (t Table[T]) skeleton(p *Printer, sb *strings.Builder) {
	widths := t.widths(nil)
	for i := range widths {
		widths[i] += 4
	}
	t.headerLine(p, sb, widths)
	for range skeletonRows {
		for i := range t.Columns {
			sb.WriteString(p.cell.Width(widths[i]).Render(p.muted.Render(strings.Repeat("░", widths[i]-2))))
		}
		sb.WriteString("\n")
	}
}

func footer[T any](p *Printer, sb *strings.Builder, st listquery.QueryState[T], noun string) {
	nav := st.Nav()
	total := st.Data.Pagination.TotalItems
	summary := fmt.Sprintf("%d %s", total, noun)
	if !nav.ShowControls {
		sb.WriteString(p.muted.Render(summary))
		sb.WriteString("\n")
		return
	}
	prev, next := "Previous", "Next"
	if !nav.HasPrevious {
		prev = p.muted.Render(prev + " (disabled)")
	}
	if !nav.HasNext {
		next = p.muted.Render(next + " (disabled)")
	}
	fmt.Fprintf(sb, "Page %d of %d · %s · %s · %s\n", nav.CurrentPage, nav.TotalPages, prev, next, p.muted.Render(summary))
}

// KeyValues renders a titled card of label/value pairs in order.
func (p *Printer) KeyValues(title string, pairs ...[2]string) error {
	var sb strings.Builder
	sb.WriteString(p.title.Render(title))
	sb.WriteString("\n")
	width := 0
	for _, kv := range pairs {
		width = max(width, lipgloss.Width(kv[0]))
	}
	for _, kv := range pairs {
		sb.WriteString(p.cell.Width(width + 3).Render(kv[0] + ":"))
		sb.WriteString(kv[1])
		sb.WriteString("\n")
	}
	_, err := io.WriteString(p.w, sb.String())
	return err
}

// Message writes a single line in the given tone.
func (p *Printer) Message(tone Tone, format string, args ...any) error {
	s := fmt.Sprintf(format, args...)
	if ts, ok := p.tones[tone]; ok {
		s = ts.Render(s)
	}
	_, err := fmt.Fprintln(p.w, s)
	return err
}
