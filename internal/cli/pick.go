package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	seqio "github.com/matzehuels/seqgraph/pkg/io"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	listCursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listHeaderStyle   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// contig is one reference sequence offered by the picker.
type contig struct {
	name   string
	length int
}

// chromosomePicker is the bubbletea model behind "make --pick": a
// scrolling multi-select list of reference sequences.
type chromosomePicker struct {
	contigs  []contig
	chosen   map[int]bool
	cursor   int
	offset   int
	height   int
	done     bool
	canceled bool
}

func newChromosomePicker(contigs []contig) chromosomePicker {
	return chromosomePicker{contigs: contigs, chosen: make(map[int]bool), height: 15}
}

func (m chromosomePicker) Init() tea.Cmd { return nil }

func (m chromosomePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.contigs)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ", "x":
			m.chosen[m.cursor] = !m.chosen[m.cursor]
		case "a":
			all := len(m.selected()) < len(m.contigs)
			for i := range m.contigs {
				m.chosen[i] = all
			}
		case "enter":
			// Enter with nothing marked takes the sequence under the cursor.
			if len(m.selected()) == 0 {
				m.chosen[m.cursor] = true
			}
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

// selected returns the chosen sequence names in reference order.
func (m chromosomePicker) selected() []string {
	var names []string
	for i, c := range m.contigs {
		if m.chosen[i] {
			names = append(names, c.name)
		}
	}
	return names
}

func (m chromosomePicker) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Select chromosomes"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ move  space toggle  a all  ⏎ build  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.contigs))
	rows := make([][]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		cursor, mark := "  ", "[ ]"
		if i == m.cursor {
			cursor = "▸ "
		}
		if m.chosen[i] {
			mark = "[x]"
		}
		rows = append(rows, []string{cursor, mark, m.contigs[i].name, fmt.Sprintf("%d bp", m.contigs[i].length)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Sequence", "Length").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			i := m.offset + row
			switch {
			case i == m.cursor:
				return listCursorStyle
			case m.chosen[i]:
				return listSelectedStyle
			}
			return styleDim
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  %d selected · [%d/%d]", len(m.selected()), m.cursor+1, len(m.contigs))))
	return b.String()
}

// pickChromosomes lets the user choose sequences from the reference at
// path. A reference with one sequence is returned without prompting.
func (c *CLI) pickChromosomes(path string) ([]string, error) {
	ref, err := seqio.ImportReference(path)
	if err != nil {
		return nil, err
	}
	names := ref.Names()
	if len(names) == 1 {
		return names, nil
	}

	contigs := make([]contig, len(names))
	for i, name := range names {
		seq, _ := ref.Sequence(name)
		contigs[i] = contig{name: name, length: len(seq)}
	}

	final, err := tea.NewProgram(newChromosomePicker(contigs), tea.WithOutput(c.stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("chromosome picker: %w", err)
	}
	m := final.(chromosomePicker)
	if m.canceled || !m.done {
		return nil, fmt.Errorf("no chromosome selected")
	}
	return m.selected(), nil
}
