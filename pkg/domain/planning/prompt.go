package planning

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TaskListSystem is the system instruction sent with task-list prompts.
const TaskListSystem = "You are an expert study planner. You return only a JSON array of task strings."

// StudyPlanSystem is the system instruction sent with study-plan prompts.
const StudyPlanSystem = "You are an expert study planner. You return only a JSON object describing a study plan."

// Budget is the amount of study time available before a deadline.
type Budget struct {
	DaysUntilDeadline int
	StudyDays         int
	StudyHours        float64
}

// ComputeBudget derives the study budget for a goal. Days until the deadline
// round up; study days are the share of those days given by daysPerWeek.
func ComputeBudget(deadline, now time.Time, daysPerWeek int, hoursPerDay float64) Budget {
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	studyDays := days * daysPerWeek / 7
	return Budget{
		DaysUntilDeadline: days,
		StudyDays:         studyDays,
		StudyHours:        float64(studyDays) * hoursPerDay,
	}
}

// TaskListPrompt asks for one short task per day between now and target.
func TaskListPrompt(subject, description string, target, now time.Time) string {
	var b strings.Builder
	b.WriteString("Create a day-by-day study plan for the learner described below.\n\n")
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Goal: %s\n", description)
	fmt.Fprintf(&b, "Target date: %s\n", target.Format(DateLayout))
	fmt.Fprintf(&b, "Today: %s\n\n", now.Format(DateLayout))
	b.WriteString("Write one study task for each day from today until the target date.\n")
	b.WriteString("Each task must be concrete and take 30 minutes to 1 hour.\n\n")
	b.WriteString("Response format:\n")
	b.WriteString("1. Return only the task list, without explanations or notes.\n")
	b.WriteString("2. Return a single array of this form:\n")
	b.WriteString("   [\"content of task 1\", \"content of task 2\", ...]\n")
	b.WriteString("3. Do not use markdown; return plain JSON.\n")
	b.WriteString("4. Every task is a quoted string and tasks are separated by commas.\n")
	return b.String()
}

// PlanRequest holds the goal details a study-plan prompt is built from.
type PlanRequest struct {
	Field       string
	Goal        string
	Deadline    time.Time
	DaysPerWeek int
	HoursPerDay float64
}

// StudyPlanPrompt asks for a structured plan sized to the goal's budget.
func StudyPlanPrompt(req PlanRequest, now time.Time) string {
	budget := ComputeBudget(req.Deadline, now, req.DaysPerWeek, req.HoursPerDay)

	var b strings.Builder
	b.WriteString("Create a detailed study plan from the conditions below.\n\n")
	fmt.Fprintf(&b, "Field: %s\n", req.Field)
	fmt.Fprintf(&b, "Goal: %s\n", req.Goal)
	fmt.Fprintf(&b, "Deadline: %s (%d days left)\n", req.Deadline.Format(DateLayout), budget.DaysUntilDeadline)
	fmt.Fprintf(&b, "Study days per week: %d\n", req.DaysPerWeek)
	fmt.Fprintf(&b, "Study hours per day: %g\n", req.HoursPerDay)
	fmt.Fprintf(&b, "Total study days: about %d\n", budget.StudyDays)
	fmt.Fprintf(&b, "Total study hours: about %g\n\n", budget.StudyHours)
	b.WriteString("Return the plan as JSON in exactly this shape:\n\n")
	b.WriteString(`{
  "summary": "overview of the plan (at most 200 characters)",
  "recommendedMaterials": ["material 1", "material 2"],
  "dailyTasks": [
    {
      "day": 1,
      "date": "YYYY-MM-DD",
      "tasks": [
        {
          "title": "task title",
          "description": "what to study and how",
          "estimatedMinutes": 30
        }
      ]
    }
  ]
}`)
	fmt.Fprintf(&b, "\n\nInclude %d days, starting %s, with at most 5 tasks per day.\n", budget.StudyDays, now.Format(DateLayout))
	b.WriteString("Guidelines:\n")
	b.WriteString("- Raise the difficulty gradually as the learner progresses.\n")
	b.WriteString("- Keep each day's total close to the daily study time.\n")
	b.WriteString("- Make every task concrete with a clear objective.\n")
	b.WriteString("- Include regular reviews and check tests.\n")
	b.WriteString("- Output JSON only, with no extra explanation.\n")
	return b.String()
}
