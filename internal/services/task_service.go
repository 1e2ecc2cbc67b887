package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/live"
	"lexify/internal/log"
)

// TaskStore is the persistence surface needed for tasks.
type TaskStore interface {
	InsertTask(ctx context.Context, t core.Task) (core.Task, error)
	UpdateTask(ctx context.Context, t core.Task) error
	DeleteTaskByID(ctx context.Context, id int64) error
	GetTask(ctx context.Context, id int64) (core.Task, error)
	ListTasks(ctx context.Context, r calendar.Range) ([]core.Task, error)
	AllTasks(ctx context.Context) ([]core.Task, error)
}

// TaskService validates and stores tasks.
type TaskService struct {
	store TaskStore
	cal   *calendar.Calendar
	notifier
}

func NewTaskService(store TaskStore, cal *calendar.Calendar, hub *live.Hub, publisher ChangePublisher, logger *log.Logger) *TaskService {
	if logger == nil {
		logger = log.Default()
	}
	return &TaskService{
		store: store,
		cal:   cal,
		notifier: notifier{
			hub:       hub,
			publisher: publisher,
			logger:    logger.WithComponent(log.ComponentTasks),
		},
	}
}

// Add validates t and stores it. A blank title is rejected with
// core.ErrEmptyTitle and nothing is written.
func (s *TaskService) Add(ctx context.Context, t core.Task) (core.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return core.Task{}, err
	}

	stored, err := s.store.InsertTask(ctx, t)
	if err != nil {
		return core.Task{}, fmt.Errorf("add task: %w", err)
	}

	s.logger.DebugContext(ctx, "Task added",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindTask), stored.ID).WithDay(stored.Date).ToSlice()...)
	s.committed(ctx, live.TopicTasks, core.Change{Kind: core.KindTask, Op: core.OpUpsert, ID: stored.ID, Date: stored.Date})
	return stored, nil
}

// Update replaces the stored task with the same identifier.
func (s *TaskService) Update(ctx context.Context, t core.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	s.committed(ctx, live.TopicTasks, core.Change{Kind: core.KindTask, Op: core.OpUpsert, ID: t.ID, Date: t.Date})
	return nil
}

// SetCompleted stores the completion flag of the task with id.
func (s *TaskService) SetCompleted(ctx context.Context, id int64, completed bool) (core.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return core.Task{}, fmt.Errorf("complete task: %w", err)
	}
	if t.Completed == completed {
		return t, nil
	}
	t.Completed = completed
	if err := s.Update(ctx, t); err != nil {
		return core.Task{}, err
	}
	return t, nil
}

// Toggle flips the completion flag of t. Only the flag is taken from t; the
// rest of the record is re-read from the store.
func (s *TaskService) Toggle(ctx context.Context, t core.Task) (core.Task, error) {
	return s.SetCompleted(ctx, t.ID, !t.Completed)
}

func (s *TaskService) Delete(ctx context.Context, t core.Task) error {
	if err := s.store.DeleteTaskByID(ctx, t.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.committed(ctx, live.TopicTasks, core.Change{Kind: core.KindTask, Op: core.OpDelete, ID: t.ID, Date: t.Date})
	return nil
}

func (s *TaskService) DeleteByID(ctx context.Context, id int64) error {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return s.Delete(ctx, t)
}

func (s *TaskService) Get(ctx context.Context, id int64) (core.Task, error) {
	return s.store.GetTask(ctx, id)
}

// TasksIn lists the tasks of a boundary pair, newest first.
func (s *TaskService) TasksIn(ctx context.Context, r calendar.Range) ([]core.Task, error) {
	return s.store.ListTasks(ctx, r)
}

// TasksOn lists the tasks of day's bucket.
func (s *TaskService) TasksOn(ctx context.Context, day time.Time) ([]core.Task, error) {
	return s.store.ListTasks(ctx, s.cal.DayRange(day))
}

func (s *TaskService) Today(ctx context.Context) ([]core.Task, error) {
	return s.store.ListTasks(ctx, s.cal.Today())
}

func (s *TaskService) All(ctx context.Context) ([]core.Task, error) {
	return s.store.AllTasks(ctx)
}
