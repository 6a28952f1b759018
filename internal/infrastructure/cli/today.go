package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bskcorona-github/studyflow/internal/infrastructure/wiring"
	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

var todayEmail string

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Interactive view of today's tasks",
	Long:  "List today's tasks for a user. Space toggles the selected task, r reloads, q quits.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		services, err := wiring.BuildAppServices(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer services.Close()

		user, err := services.Store.GetUserByEmail(ctx, todayEmail)
		if err != nil {
			return err
		}

		p := tea.NewProgram(newTodayModel(ctx, services.Tasks, user))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("today view failed: %w", err)
		}
		return nil
	},
}

func init() {
	todayCmd.Flags().StringVar(&todayEmail, "email", "", "email of the signed-in user")
	_ = todayCmd.MarkFlagRequired("email")
	RootCmd.AddCommand(todayCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var statusDone = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var statusErr = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type tasksLoadedMsg struct {
	items []study.TaskDetail
	err   error
}

type taskToggledMsg struct {
	task *study.Task
	err  error
}

type todayModel struct {
	ctx    context.Context
	tasks  *application.TaskService
	user   *study.User
	items  []study.TaskDetail
	table  table.Model
	status string
	err    error
}

func newTodayModel(ctx context.Context, tasks *application.TaskService, user *study.User) todayModel {
	columns := []table.Column{
		{Title: "Done", Width: 6},
		{Title: "Task", Width: 40},
		{Title: "Goal", Width: 24},
		{Title: "Min", Width: 5},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))

	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))

	t.SetStyles(s)

	return todayModel{ctx: ctx, tasks: tasks, user: user, table: t}
}

func (m todayModel) Init() tea.Cmd { return m.load }

func (m todayModel) load() tea.Msg {
	items, err := m.tasks.Today(m.ctx, m.user.ID)
	return tasksLoadedMsg{items: items, err: err}
}

func (m todayModel) toggle(item study.TaskDetail) tea.Cmd {
	return func() tea.Msg {
		done := !item.IsComplete()
		task, err := m.tasks.Update(m.ctx, m.user.ID, application.UpdateTaskInput{TaskID: item.ID, IsComplete: &done})
		return taskToggledMsg{task: task, err: err}
	}
}

func (m todayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "x":
			if i := m.table.Cursor(); i >= 0 && i < len(m.items) {
				return m, m.toggle(m.items[i])
			}
			return m, nil
		case "r":
			return m, m.load
		}
	case tasksLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.items = msg.items
			m.table.SetRows(todayRows(msg.items))
		}
		return m, nil
	case taskToggledMsg:
		if msg.err != nil {
			m.status = statusErr.Render(msg.err.Error())
			return m, nil
		}
		verb := "reopened"
		if msg.task.IsComplete() {
			verb = "completed"
		}
		m.status = statusDone.Render(fmt.Sprintf("%s %q", verb, msg.task.Title))
		return m, m.load
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func todayRows(items []study.TaskDetail) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		mark := "[ ]"
		if item.IsComplete() {
			mark = "[x]"
		}
		minutes := "-"
		if item.EstimatedMinutes > 0 {
			minutes = fmt.Sprint(item.EstimatedMinutes)
		}
		rows = append(rows, table.Row{mark, item.Title, item.GoalTitle, minutes})
	}
	return rows
}

func (m todayModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading tasks: %v\nPress q to quit.", m.err)
	}

	done := 0
	for _, item := range m.items {
		if item.IsComplete() {
			done++
		}
	}
	header := headerStyle.Render(fmt.Sprintf("Today, %s", m.user.Email))
	summary := fmt.Sprintf("%d of %d tasks done", done, len(m.items))
	if len(m.items) == 0 {
		summary = "Nothing scheduled today."
	}

	var b strings.Builder
	b.WriteString(m.status)
	if m.status != "" {
		b.WriteString("\n")
	}
	b.WriteString("space: toggle  r: reload  q: quit")

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			summary,
			m.table.View(),
			b.String(),
		),
	) + "\n"
}
