package selector

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	listWidth     = 60
	maxListHeight = 20
)

// List is an interactive selector with type-to-filter, drawn inline.
type List struct {
	in  io.Reader
	out io.Writer
}

// NewList creates a List reading keys from in and drawing on out.
func NewList(in io.Reader, out io.Writer) *List {
	return &List{in: in, out: out}
}

// Choose runs the list until the user picks an entry or cancels with Esc,
// q or Ctrl+C.
func (l *List) Choose(ctx context.Context, title string, choices []Choice) (Choice, error) {
	if len(choices) == 0 {
		return Choice{}, ErrNoChoices
	}

	p := tea.NewProgram(
		newListModel(title, choices),
		tea.WithContext(ctx),
		tea.WithInput(l.in),
		tea.WithOutput(l.out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return Choice{}, ctx.Err()
		}
		return Choice{}, err
	}

	m := final.(listModel)
	if m.chosen == nil {
		return Choice{}, ErrCanceled
	}
	return *m.chosen, nil
}

type item struct {
	Choice
}

func (i item) Title() string       { return i.Label }
func (i item) Description() string { return "" }
func (i item) FilterValue() string { return i.Label }

var cancelKeys = key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"))

type listModel struct {
	list   list.Model
	chosen *Choice
	done   bool
}

func newListModel(title string, choices []Choice) listModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = item{c}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	height := min(len(choices)+6, maxListHeight)
	l := list.New(items, delegate, listWidth, height)
	l.Title = title
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	return listModel{list: l}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(min(msg.Width, listWidth))
		return m, nil

	case tea.KeyMsg:
		// While the filter is being typed, keys belong to the filter input.
		if m.list.FilterState() == list.Filtering {
			if msg.Type == tea.KeyCtrlC {
				m.done = true
				return m, tea.Quit
			}
			break
		}

		switch {
		case msg.Type == tea.KeyEnter:
			if it, ok := m.list.SelectedItem().(item); ok {
				c := it.Choice
				m.chosen = &c
			}
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, cancelKeys):
			if msg.Type == tea.KeyEsc && m.list.FilterState() == list.FilterApplied {
				break
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m listModel) View() string {
	if m.done {
		return ""
	}
	return m.list.View()
}
