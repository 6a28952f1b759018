package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

type suggestRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	TargetDate  string `json:"targetDate"`
}

// handleAPISuggest answers with the bare task array. An unreadable target
// date falls back to today.
func (s *Server) handleAPISuggest(w http.ResponseWriter, r *http.Request, user *study.User) {
	var body suggestRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	target, _ := application.ParseDeadline(body.TargetDate)

	ext, err := s.planner.SuggestTasks(r.Context(), user.ID, application.TaskListRequest{
		Subject:     body.Subject,
		Description: body.Description,
		TargetDate:  target,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ext.Tasks)
}

func (s *Server) handleAPIListGoals(w http.ResponseWriter, r *http.Request, user *study.User) {
	goals, err := s.goals.List(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

type createGoalRequest struct {
	Title       string              `json:"title"`
	Field       string              `json:"field"`
	Goal        string              `json:"goal"`
	Deadline    string              `json:"deadline"`
	DaysPerWeek planning.LenientInt `json:"daysPerWeek"`
	HoursPerDay float64             `json:"hoursPerDay"`
	SkipPlan    bool                `json:"skipPlan"`
}

type createGoalResponse struct {
	Message   string      `json:"message"`
	StudyGoal *study.Goal `json:"studyGoal"`
}

func (s *Server) handleAPICreateGoal(w http.ResponseWriter, r *http.Request, user *study.User) {
	var body createGoalRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.goals.Create(r.Context(), user.ID, application.CreateGoalInput{
		Title:       body.Title,
		Field:       body.Field,
		Goal:        body.Goal,
		Deadline:    body.Deadline,
		DaysPerWeek: int(body.DaysPerWeek),
		HoursPerDay: body.HoursPerDay,
		SkipPlan:    body.SkipPlan,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createGoalResponse{Message: res.Message, StudyGoal: res.Goal})
}

// handleAPIDeleteGoalQuery reports goals of other users as missing.
func (s *Server) handleAPIDeleteGoalQuery(w http.ResponseWriter, r *http.Request, user *study.User) {
	id := strings.TrimSpace(r.URL.Query().Get("goalId"))
	if id == "" {
		s.writeError(w, r, &study.ValidationError{Field: "goalId", Message: "is required"})
		return
	}
	err := s.goals.Delete(r.Context(), user.ID, id)
	if errors.Is(err, study.ErrForbidden) {
		err = study.ErrGoalNotFound
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAPIGetGoal(w http.ResponseWriter, r *http.Request, user *study.User) {
	goal, err := s.goals.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleAPIDeleteGoal(w http.ResponseWriter, r *http.Request, user *study.User) {
	if err := s.goals.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAPIExportGoal(w http.ResponseWriter, r *http.Request, user *study.User) {
	res, err := s.goals.Export(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIListTasks(w http.ResponseWriter, r *http.Request, user *study.User) {
	filter, err := taskFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tasks, err := s.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func taskFilter(r *http.Request) (study.TaskFilter, error) {
	q := r.URL.Query()
	filter := study.TaskFilter{GoalID: strings.TrimSpace(q.Get("goalId"))}
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		day, err := application.ParseDeadline(raw)
		if err != nil {
			return filter, &study.ValidationError{Field: "date", Message: "must be a date (YYYY-MM-DD)"}
		}
		filter.Date = &day
	}
	return filter, nil
}

type createTaskRequest struct {
	Content     string `json:"content"`
	Description string `json:"description"`
	Date        string `json:"date"`
	GoalID      string `json:"goalId"`
}

func (s *Server) handleAPICreateTask(w http.ResponseWriter, r *http.Request, user *study.User) {
	var body createTaskRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.tasks.Create(r.Context(), user.ID, application.CreateTaskInput{
		GoalID:      body.GoalID,
		Title:       body.Content,
		Description: body.Description,
		Date:        body.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

type updateTaskRequest struct {
	TaskID      string  `json:"taskId"`
	IsComplete  *bool   `json:"isComplete"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *Server) handleAPIUpdateTask(w http.ResponseWriter, r *http.Request, user *study.User) {
	var body updateTaskRequest
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.tasks.Update(r.Context(), user.ID, application.UpdateTaskInput{
		TaskID:      strings.TrimSpace(body.TaskID),
		IsComplete:  body.IsComplete,
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleAPIDeleteTask(w http.ResponseWriter, r *http.Request, user *study.User) {
	id := strings.TrimSpace(r.URL.Query().Get("taskId"))
	if err := s.tasks.Delete(r.Context(), user.ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
