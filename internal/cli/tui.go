package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gdivelog2uddf/pkg/export"
	"github.com/matzehuels/gdivelog2uddf/pkg/outline"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DiveListModel - Interactive dive selection
// =============================================================================

// diveRow is one selectable dive.
type diveRow struct {
	dive  outline.Dive
	group int
}

// DiveListModel is the bubbletea model for interactive dive selection.
type DiveListModel struct {
	Rows     []diveRow
	Picked   map[int]bool
	Cursor   int
	Height   int
	Offset   int
	Done     bool
	Canceled bool
}

// NewDiveListModel creates a dive list from planned documents.
func NewDiveListModel(docs []*outline.Document) DiveListModel {
	var rows []diveRow
	for _, doc := range docs {
		for _, g := range doc.Groups {
			for _, d := range g.Dives {
				rows = append(rows, diveRow{dive: d, group: g.ID})
			}
		}
	}
	return DiveListModel{
		Rows:   rows,
		Picked: make(map[int]bool),
		Height: 15,
	}
}

// Selected returns the picked dive numbers in list order.
func (m DiveListModel) Selected() []int64 {
	var out []int64
	for i, r := range m.Rows {
		if m.Picked[i] {
			out = append(out, r.dive.Number)
		}
	}
	return out
}

func (m DiveListModel) Init() tea.Cmd {
	return nil
}

func (m DiveListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Rows) > 0 {
				m.Picked = toggled(m.Picked, m.Cursor)
			}
		case "g":
			// Toggle the whole repetition group under the cursor.
			if len(m.Rows) > 0 {
				group := m.Rows[m.Cursor].group
				on := !m.Picked[m.Cursor]
				next := copyPicked(m.Picked)
				for i, r := range m.Rows {
					if r.group == group {
						next[i] = on
					}
				}
				m.Picked = next
			}
		case "a":
			next := make(map[int]bool, len(m.Rows))
			if len(m.Selected()) < len(m.Rows) {
				for i := range m.Rows {
					next[i] = true
				}
			}
			m.Picked = next
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

func (m DiveListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dives"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space pick  g group  a all  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.Picked[i] {
			mark = "[x]"
		}

		rows = append(rows, []string{
			cursor + mark,
			strconv.FormatInt(r.dive.Number, 10),
			r.dive.Start.Format("2006-01-02 15:04"),
			fmt.Sprintf("rg_%d", r.group),
			fmtSurfaceInterval(r.dive),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Dive", "Start", "Group", "Interval").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 4 {
				base = base.Foreground(colorGray)
			}
			switch {
			case idx == m.Cursor && m.Picked[idx]:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Bold(true)
			case m.Picked[idx]:
				return base.Foreground(colorGreen)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d selected", m.Cursor+1, len(m.Rows), len(m.Selected()))))

	return b.String()
}

func toggled(picked map[int]bool, i int) map[int]bool {
	next := copyPicked(picked)
	next[i] = !next[i]
	return next
}

func copyPicked(picked map[int]bool) map[int]bool {
	next := make(map[int]bool, len(picked))
	for k, v := range picked {
		next[k] = v
	}
	return next
}

// pickDives plans the log and lets the user choose dives to export.
// It returns nil when the user quits without confirming.
func pickDives(ctx context.Context, runner *export.Runner, opts export.Options) ([]int64, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Reading %s...", opts.Input))
	spinner.Start()
	docs, _, err := runner.Plan(ctx, opts)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	m := NewDiveListModel(docs)
	if len(m.Rows) == 0 {
		return nil, nil
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(DiveListModel)
	if !ok || fm.Canceled || !fm.Done {
		return nil, nil
	}
	return fm.Selected(), nil
}
