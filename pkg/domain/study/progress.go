package study

import (
	"math"
	"time"
)

// Tally counts finished tasks of one study day.
type Tally struct {
	Done  int
	Total int
}

// CountTasks tallies tasks.
func CountTasks(tasks []Task) Tally {
	t := Tally{Total: len(tasks)}
	for _, task := range tasks {
		if task.IsComplete() {
			t.Done++
		}
	}
	return t
}

// Progress is Done/Total, or 0 for an empty day.
func (t Tally) Progress() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Done) / float64(t.Total)
}

// Complete reports whether every task of a non-empty day is done. Used after
// a task is created or updated.
func (t Tally) Complete() bool {
	return t.Total > 0 && t.Done == t.Total
}

// CompleteAfterDelete is the completion rule applied when a task is removed:
// a day left without tasks counts as complete.
func (t Tally) CompleteAfterDelete() bool {
	return t.Total == 0 || t.Done == t.Total
}

// GoalProgress is round(completed days / days × 100), 0 without days.
func GoalProgress(schedules []Schedule) int {
	if len(schedules) == 0 {
		return 0
	}
	complete := 0
	for _, s := range schedules {
		if s.IsComplete {
			complete++
		}
	}
	return int(math.Round(float64(complete) / float64(len(schedules)) * 100))
}

// RemainingDays counts calendar days from now until the deadline. Past
// deadlines give negative values.
func RemainingDays(deadline, now time.Time) int {
	diff := Day(deadline).Sub(Day(now)).Hours() / 24
	return int(math.Ceil(diff))
}
