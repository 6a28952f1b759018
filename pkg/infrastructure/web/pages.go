package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/application"
	"github.com/bskcorona-github/studyflow/pkg/domain/study"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if userFrom(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", PageData{Title: "studyflow"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user *study.User) {
	overview, err := s.dashboard.Overview(r.Context(), user.ID, s.now())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", PageData{Title: "Dashboard", Data: overview})
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request, user *study.User) {
	goals, err := s.goals.List(r.Context(), user.ID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "goals.html", PageData{Title: "Goals", Data: goals})
}

// GoalForm is the new-goal form as submitted.
type GoalForm struct {
	Title       string
	Field       string
	Goal        string
	Deadline    string
	DaysPerWeek string
	HoursPerDay string
}

func (s *Server) handleGoalNew(w http.ResponseWriter, r *http.Request, user *study.User) {
	form := GoalForm{DaysPerWeek: "5", HoursPerDay: "1"}
	s.render(w, r, http.StatusOK, "goal_new.html", PageData{Title: "New goal", Data: form})
}

func (s *Server) handleGoalCreate(w http.ResponseWriter, r *http.Request, user *study.User) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	form := GoalForm{
		Title:       r.PostForm.Get("title"),
		Field:       r.PostForm.Get("field"),
		Goal:        r.PostForm.Get("goal"),
		Deadline:    r.PostForm.Get("deadline"),
		DaysPerWeek: r.PostForm.Get("daysPerWeek"),
		HoursPerDay: r.PostForm.Get("hoursPerDay"),
	}
	days, _ := strconv.Atoi(strings.TrimSpace(form.DaysPerWeek))
	hours, _ := strconv.ParseFloat(strings.TrimSpace(form.HoursPerDay), 64)

	res, err := s.goals.Create(r.Context(), user.ID, application.CreateGoalInput{
		Title:       form.Title,
		Field:       form.Field,
		Goal:        form.Goal,
		Deadline:    form.Deadline,
		DaysPerWeek: days,
		HoursPerDay: hours,
		SkipPlan:    r.PostForm.Get("skipPlan") == "on",
	})
	var verr *study.ValidationError
	if errors.As(err, &verr) {
		s.render(w, r, http.StatusBadRequest, "goal_new.html", PageData{Title: "New goal", Error: verr.Error(), Data: form})
		return
	}
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	target := "/goals/" + url.PathEscape(res.Goal.ID)
	if res.PlanError != nil {
		target += "?notice=" + url.QueryEscape(res.Message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleGoal(w http.ResponseWriter, r *http.Request, user *study.User) {
	goal, err := s.goals.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "goal.html", PageData{
		Title:  goal.Title,
		Notice: r.URL.Query().Get("notice"),
		Data:   goal,
	})
}

func (s *Server) handleGoalDelete(w http.ResponseWriter, r *http.Request, user *study.User) {
	if err := s.goals.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, "/goals", http.StatusSeeOther)
}

// TasksView is the tasks page model.
type TasksView struct {
	Date  string
	Tasks []study.TaskDetail
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, user *study.User) {
	filter, err := taskFilter(r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	if filter.Date == nil && filter.GoalID == "" {
		today := study.Day(s.now())
		filter.Date = &today
	}
	tasks, err := s.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	view := TasksView{Tasks: tasks}
	if filter.Date != nil {
		view.Date = filter.Date.Format(study.DateLayout)
	}
	s.render(w, r, http.StatusOK, "tasks.html", PageData{Title: "Tasks", Data: view})
}

func (s *Server) handleTaskToggle(w http.ResponseWriter, r *http.Request, user *study.User) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form.")
		return
	}
	complete := r.PostForm.Get("complete") == "true"
	if _, err := s.tasks.Update(r.Context(), user.ID, application.UpdateTaskInput{
		TaskID:     r.PathValue("id"),
		IsComplete: &complete,
	}); err != nil {
		s.pageError(w, r, err)
		return
	}
	s.logger.Debug("task toggled", zap.String("task_id", r.PathValue("id")), zap.Bool("complete", complete))

	back := r.PostForm.Get("back")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/tasks"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
