package mobile

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aaa221132/audiobook-library/internal/model"
)

var (
	colorAccent = lipgloss.Color("#4F9CF0")
	colorMuted  = lipgloss.Color("#9FB2C4")
	colorDanger = lipgloss.Color("#E06060")
	colorText   = lipgloss.Color("#E8EEF4")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	authorStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			MarginTop(1)

	coverStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 2)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)
)

// uiMode represents the current screen of the catalog UI.
type uiMode int

const (
	modeLoading uiMode = iota
	modeList
	modeDetail
	modeError
)

// bookItem adapts a catalog entry to the bubbles list.
type bookItem struct {
	book model.BookSummary
}

func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string { return i.book.Author }
func (i bookItem) FilterValue() string { return i.book.Title + " " + i.book.Author }

// Model is the Bubbletea model for browsing a library server.
type Model struct {
	mode   uiMode
	client *Client
	list   list.Model

	selected model.BookSummary
	cover    Cover
	hasCover bool

	err    error
	width  int
	height int
}

// NewModel creates the catalog UI backed by the given client.
func NewModel(client *Client) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(colorAccent).BorderForeground(colorAccent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(colorMuted).BorderForeground(colorAccent)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Audiobook Library"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return Model{
		mode:   modeLoading,
		client: client,
		list:   l,
	}
}

// Init starts the initial catalog fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadBooksCmd(m.client),
		tea.EnterAltScreen,
	)
}

// Messages
type booksLoadedMsg struct {
	books []model.BookSummary
}

type coverLoadedMsg struct {
	cover    Cover
	hasCover bool
}

type errorMsg struct {
	err error
}

// Commands
func loadBooksCmd(client *Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		books, err := client.Books(ctx)
		if err != nil {
			return errorMsg{err: err}
		}
		return booksLoadedMsg{books: books}
	}
}

func loadCoverCmd(client *Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cover, ok, err := client.Image(ctx, id)
		if err != nil {
			return errorMsg{err: err}
		}
		return coverLoadedMsg{cover: cover, hasCover: ok}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case booksLoadedMsg:
		items := make([]list.Item, len(msg.books))
		for i, b := range msg.books {
			items[i] = bookItem{book: b}
		}
		m.list.SetItems(items)
		m.mode = modeList
		return m, nil

	case coverLoadedMsg:
		m.cover = msg.cover
		m.hasCover = msg.hasCover
		return m, nil

	case errorMsg:
		m.mode = modeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "r":
				m.mode = modeLoading
				return m, loadBooksCmd(m.client)
			case "enter":
				item, ok := m.list.SelectedItem().(bookItem)
				if !ok {
					return m, nil
				}
				m.selected = item.book
				m.cover = Cover{}
				m.hasCover = false
				m.mode = modeDetail
				return m, loadCoverCmd(m.client, m.selected.ID)
			}

		case modeDetail:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "backspace":
				m.mode = modeList
				return m, nil
			}

		case modeError, modeLoading:
			switch msg.String() {
			case "ctrl+c", "q", "enter":
				return m, tea.Quit
			}
		}
	}

	if m.mode == modeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current screen.
func (m Model) View() string {
	switch m.mode {
	case modeLoading:
		return bodyStyle.Render("Loading catalog...")

	case modeList:
		help := helpStyle.Render("↑/↓ navigate • enter details • r refresh • q quit")
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), help)

	case modeDetail:
		cover := "No cover image"
		if m.hasCover {
			cover = fmt.Sprintf("Cover: %s, %d bytes", m.cover.ContentType, m.cover.Bytes)
		}

		detail := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(m.selected.Title),
			authorStyle.Render("by "+m.selected.Author),
			bodyStyle.Render(m.selected.Description),
			coverStyle.Render(cover),
		)
		help := helpStyle.Render("esc back • q quit")
		return lipgloss.JoinVertical(lipgloss.Left, detailBoxStyle.Render(detail), help)

	case modeError:
		msg := errorStyle.Render(m.err.Error()) + "\n" +
			helpStyle.Render("q quit")
		return msg
	}

	return ""
}

// Run starts the catalog UI against the given server.
func Run(baseURL string) error {
	p := tea.NewProgram(NewModel(NewClient(baseURL)))
	_, err := p.Run()
	return err
}
