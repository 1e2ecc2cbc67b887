package state

import (
	"context"
	"errors"

	"lexify/internal/core"
	"lexify/internal/storage"
)

// Kind is the phase of a task list.
type Kind int

const (
	Loading Kind = iota
	Empty
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// TaskState is what a task list shows. On Error, Tasks still holds the last
// successfully loaded list.
type TaskState struct {
	Kind    Kind
	Tasks   []core.Task
	Message string
}

// TasksLoaded returns Empty or Success for tasks.
func TasksLoaded(tasks []core.Task) TaskState {
	if len(tasks) == 0 {
		return TaskState{Kind: Empty, Tasks: []core.Task{}}
	}
	return TaskState{Kind: Success, Tasks: tasks}
}

// failed keeps the previous list and records the failure.
func (s TaskState) failed(err error) TaskState {
	return TaskState{Kind: Error, Tasks: s.Tasks, Message: Message(err)}
}

// Message turns an error into text suitable for the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsValidation(err):
		return rootMessage(err)
	case errors.Is(err, storage.ErrNotFound):
		return "The record no longer exists"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The operation was cancelled"
	default:
		return "Could not access saved data: " + err.Error()
	}
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
