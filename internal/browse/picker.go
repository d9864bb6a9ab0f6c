package browse

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/amishk599/jobradius/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerCurrentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

// Picker results besides a plan index.
const (
	pickNone = -1
	pickQuit = -2
)

type pickerModel struct {
	plans   []model.Plan
	current string // plan id shown as the subscriber's current plan
	cursor  int
	chosen  int
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.chosen = pickQuit
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.plans)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.plans) > 0 {
				m.chosen = m.cursor
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Select a plan")
	s += "\n"

	for i, p := range m.plans {
		label := planLabel(p)
		if p.ID == m.current {
			label += pickerCurrentStyle.Render("  (current)")
		}
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+label) + "\n"
		} else {
			s += pickerItemStyle.Render(label) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

func planLabel(p model.Plan) string {
	price := "free"
	if p.Price > 0 {
		price = fmt.Sprintf("$%s/%s", humanize.Commaf(p.Price), intervalUnit(p.Interval))
	}
	return fmt.Sprintf("%s (%s) · %s", p.Name, p.ID, price)
}

func intervalUnit(i model.BillingInterval) string {
	if i == model.Yearly {
		return "yr"
	}
	return "mo"
}

// RunPlanPicker shows an interactive plan selector with current marked.
// Returns the index of the chosen plan, or -1 if the user quit.
func RunPlanPicker(plans []model.Plan, current string) (int, error) {
	m := pickerModel{
		plans:   plans,
		current: current,
		cursor:  0,
		chosen:  pickNone,
	}
	for i, p := range plans {
		if p.ID == current {
			m.cursor = i
		}
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return pickNone, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return pickNone, nil
	}
	return final.chosen, nil
}
