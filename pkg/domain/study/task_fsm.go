package study

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State IDs must stay equal to the TaskStatus values.
const (
	statePending = "pending"
	stateDone    = "done"
)

func init() {
	for state, status := range map[string]TaskStatus{statePending: StatusPending, stateDone: StatusDone} {
		if state != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match TaskStatus %q", state, status))
		}
	}
}

// TaskContext carries the task a machine runs for.
type TaskContext struct {
	TaskID string
}

// TaskStateMachine drives the pending/done lifecycle of one task.
type TaskStateMachine struct {
	taskID      string
	interpreter *statekit.Interpreter[TaskContext]
}

func NewTaskStateMachine(initial TaskStatus, taskID string) (*TaskStateMachine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("unknown task status %q", initial)
	}

	builder := statekit.NewMachine[TaskContext]("task").
		WithInitial(statekit.StateID(initial)).
		WithContext(TaskContext{TaskID: taskID})

	builder.State(statePending).
		On(EventComplete).Target(stateDone).
		Done()

	builder.State(stateDone).
		On(EventReopen).Target(statePending).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build task state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &TaskStateMachine{taskID: taskID, interpreter: interpreter}, nil
}

// Fire sends event and reports a *TransitionError when the state did not move.
func (sm *TaskStateMachine) Fire(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if sm.Current() != before {
		return nil
	}
	return &TransitionError{TaskID: sm.taskID, From: before, Event: event}
}

// Current returns the machine's state as a TaskStatus.
func (sm *TaskStateMachine) Current() TaskStatus {
	return TaskStatus(sm.interpreter.State().Value)
}

// SetComplete moves task into the requested completion state through the
// state machine. It reports whether the status changed.
func SetComplete(task *Task, complete bool) (bool, error) {
	event := task.Status.EventFor(complete)
	if event == "" {
		return false, nil
	}
	sm, err := NewTaskStateMachine(task.Status, task.ID)
	if err != nil {
		return false, err
	}
	if err := sm.Fire(event); err != nil {
		return false, err
	}
	task.Status = sm.Current()
	return true, nil
}
