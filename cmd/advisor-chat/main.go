// Command advisor-chat is a terminal client for the portfolio agent. It
// connects to the server's websocket endpoint and renders streamed phases
// (assistant turns and tool activity) as they complete.
//
// Usage:
//
//	go run cmd/advisor-chat/main.go -addr localhost:8080
//
// Commands:
//
//	Ctrl+C / Esc - Exit
//	<message>    - Ask the portfolio agent
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"

	"github.com/stonexlabs/portfolio-agent/pkg/domain"
	"github.com/stonexlabs/portfolio-agent/pkg/server"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).Bold(true)

	messageStyle = lipgloss.NewStyle().PaddingLeft(2)
)

type streamEventMsg server.StreamEvent
type connClosedMsg struct{ err error }

type chatModel struct {
	ws     *websocket.Conn
	events chan tea.Msg

	history []domain.Message
	lines   []string
	waiting bool
	err     error

	viewport viewport.Model
	textarea textarea.Model
}

func newChatModel(ws *websocket.Conn) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about a portfolio..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.SetContent("Connected. Ask about a client's portfolio, e.g. \"What stocks does client C001 own?\"")

	m := chatModel{
		ws:       ws,
		events:   make(chan tea.Msg, 16),
		viewport: vp,
		textarea: ta,
	}

	// Reader goroutine: websocket frames become tea messages.
	go func() {
		for {
			var evt server.StreamEvent
			if err := ws.ReadJSON(&evt); err != nil {
				m.events <- connClosedMsg{err: err}
				return
			}
			m.events <- streamEventMsg(evt)
		}
	}()

	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForEvent())
}

func (m chatModel) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var tiCmd, vpCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.textarea.SetWidth(msg.Width)
		m.viewport.Height = msg.Height - m.textarea.Height() - 2
		if m.viewport.Height < 0 {
			m.viewport.Height = 0
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" || m.waiting {
				break
			}
			m.history = append(m.history, domain.NewUserMessage(text))
			m.appendLine(userStyle.Render("You: ") + text)
			m.textarea.Reset()

			if err := m.ws.WriteJSON(server.PredictRequest{Messages: m.history}); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.waiting = true
		}

	case streamEventMsg:
		m.applyEvent(server.StreamEvent(msg))
		return m, tea.Batch(tiCmd, vpCmd, m.waitForEvent())

	case connClosedMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *chatModel) applyEvent(evt server.StreamEvent) {
	switch {
	case evt.Error != "":
		m.appendLine(errorStyle.Render("Error: " + evt.Error))
		m.waiting = false
	case evt.Done:
		m.waiting = false
	default:
		for _, message := range evt.Messages {
			m.history = append(m.history, message)
			m.renderMessage(message)
		}
	}
}

func (m *chatModel) renderMessage(message domain.Message) {
	switch message.Role {
	case domain.RoleAssistant:
		for _, tc := range message.ToolCalls {
			m.appendLine(toolStyle.Render(fmt.Sprintf("[calling %s]", tc.Name)))
		}
		if message.Content != "" {
			m.appendLine(assistantStyle.Render("Analyst: ") + message.Content)
		}
	case domain.RoleTool:
		label := "[tool result]"
		if message.IsError {
			label = "[tool error]"
		}
		m.appendLine(toolStyle.Render(label))
	}
}

func (m *chatModel) appendLine(line string) {
	m.lines = append(m.lines, messageStyle.Render(line))
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	status := ""
	if m.waiting {
		status = toolStyle.Render(" thinking...")
	}
	return fmt.Sprintf(
		"%s%s\n%s\n\n%s",
		titleStyle.Render("StoneX Portfolio Analyst"),
		status,
		m.viewport.View(),
		m.textarea.View(),
	)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "agent server address")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/api/agent/chat"}
	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting to %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	defer ws.Close()

	p := tea.NewProgram(newChatModel(ws), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "running TUI: %v\n", err)
		os.Exit(1)
	}
}
