package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/islandlink/pkg/pipeline"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GroupListModel - Interactive group selection
// =============================================================================

// GroupListModel is the bubbletea model for browsing solved groups.
type GroupListModel struct {
	Groups   []pipeline.GroupResult
	Cursor   int
	Selected *pipeline.GroupResult
	Height   int
	Offset   int
}

// NewGroupListModel creates a new group list model.
func NewGroupListModel(groups []pipeline.GroupResult) GroupListModel {
	return GroupListModel{Groups: groups, Height: 15}
}

func (m GroupListModel) Init() tea.Cmd {
	return nil
}

func (m GroupListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Groups)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			g := m.Groups[m.Cursor]
			m.Selected = &g
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m GroupListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Island Groups"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ show network  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Groups))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Groups[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(g.Index),
			g.Name,
			strconv.Itoa(g.Sites),
			fmt.Sprintf("%.2f", g.Average),
			fmt.Sprintf("%.1f", g.CableAfter),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Group", "Name", "Islands", "Average", "Cable").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Groups))))

	return b.String()
}

// browseGroups runs the picker until the user quits, printing the network of
// every group they select.
func browseGroups(w io.Writer, groups []pipeline.GroupResult) error {
	cursor := 0
	for {
		m := NewGroupListModel(groups)
		m.Cursor = cursor
		final, err := tea.NewProgram(m).Run()
		if err != nil {
			return fmt.Errorf("group picker: %w", err)
		}
		picked := final.(GroupListModel)
		if picked.Selected == nil {
			return nil
		}
		printGroupDetail(w, *picked.Selected)
		cursor = picked.Cursor
	}
}

// printGroupDetail prints one group's figures and its cable links.
func printGroupDetail(w io.Writer, g pipeline.GroupResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render(g.String()))
	printKeyValue(w, "Islands", strconv.Itoa(g.Sites))
	printKeyValue(w, "Population", strconv.Itoa(g.Population))
	printKeyValue(w, "Cable", fmt.Sprintf("%.2f (was %.2f)", g.CableAfter, g.CableBefore))
	printKeyValue(w, "Relinks", strconv.Itoa(g.Commits))
	fmt.Fprintln(w, StyleDim.Render("Links:"))
	for _, e := range g.View.Edges {
		fmt.Fprintf(w, "  %d %s %d\n", e.From, StyleDim.Render(iconArrow), e.To)
	}
}
