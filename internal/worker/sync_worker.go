package worker

import (
	"context"
	"errors"
	"fmt"

	"lexify/internal/amqp"
	"lexify/internal/core"
	"lexify/internal/log"
	"lexify/internal/sheets"
	"lexify/internal/storage"
)

// Source is the read side of the store the worker mirrors from.
type Source interface {
	GetTask(ctx context.Context, id int64) (core.Task, error)
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	AllTasks(ctx context.Context) ([]core.Task, error)
	AllIncomes(ctx context.Context) ([]core.Income, error)
	AllExpenses(ctx context.Context) ([]core.Expense, error)
}

// SyncWorker copies committed records from the local store into a mirror.
type SyncWorker struct {
	source Source
	mirror sheets.RecordMirror
	names  sheets.Names
	logger *log.Logger
}

func NewSyncWorker(source Source, mirror sheets.RecordMirror, names sheets.Names, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncWorker{
		source: source,
		mirror: mirror,
		names:  names,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleChange applies one change message. Upserts re-read the record, so a
// record deleted after the message was sent is removed from the mirror.
func (w *SyncWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	sheet, ok := w.names.For(msg.Kind)
	if !ok {
		w.logger.WarnContext(ctx, "No sheet configured for record kind, skipping", log.FieldKind, msg.Kind, log.FieldID, msg.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing change message",
		log.FieldKind, msg.Kind,
		"op", msg.Op,
		log.FieldID, msg.ID)

	if msg.Op == core.OpDelete {
		return w.remove(ctx, sheet, msg.ID)
	}

	row, err := w.row(ctx, msg.Kind, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return w.remove(ctx, sheet, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("read %s %d: %w", msg.Kind, msg.ID, err)
	}

	if err := w.mirror.Upsert(ctx, sheet, msg.ID, row); err != nil {
		return fmt.Errorf("mirror %s %d: %w", msg.Kind, msg.ID, err)
	}
	return nil
}

func (w *SyncWorker) remove(ctx context.Context, sheet string, id int64) error {
	if err := w.mirror.Remove(ctx, sheet, id); err != nil {
		return fmt.Errorf("remove row %d from %s: %w", id, sheet, err)
	}
	return nil
}

func (w *SyncWorker) row(ctx context.Context, kind core.RecordKind, id int64) ([]string, error) {
	switch kind {
	case core.KindTask:
		t, err := w.source.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.TaskRow(t), nil
	case core.KindIncome:
		i, err := w.source.GetIncome(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.IncomeRow(i), nil
	case core.KindExpense:
		e, err := w.source.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		return sheets.ExpenseRow(e), nil
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

// ResyncStats counts the rows written by Resync.
type ResyncStats struct {
	Tasks    int
	Incomes  int
	Expenses int
	Errors   int
}

// Resync writes every stored record to the mirror. It recovers from change
// messages lost while the worker was down. Failed rows are logged and counted;
// only failures to read the store abort the run.
func (w *SyncWorker) Resync(ctx context.Context) (ResyncStats, error) {
	var stats ResyncStats

	if sheet, ok := w.names.For(core.KindTask); ok {
		tasks, err := w.source.AllTasks(ctx)
		if err != nil {
			return stats, fmt.Errorf("list tasks: %w", err)
		}
		for _, t := range tasks {
			w.upsert(ctx, sheet, t.ID, sheets.TaskRow(t), &stats.Tasks, &stats.Errors)
		}
	}

	if sheet, ok := w.names.For(core.KindIncome); ok {
		incomes, err := w.source.AllIncomes(ctx)
		if err != nil {
			return stats, fmt.Errorf("list incomes: %w", err)
		}
		for _, i := range incomes {
			w.upsert(ctx, sheet, i.ID, sheets.IncomeRow(i), &stats.Incomes, &stats.Errors)
		}
	}

	if sheet, ok := w.names.For(core.KindExpense); ok {
		expenses, err := w.source.AllExpenses(ctx)
		if err != nil {
			return stats, fmt.Errorf("list expenses: %w", err)
		}
		for _, e := range expenses {
			w.upsert(ctx, sheet, e.ID, sheets.ExpenseRow(e), &stats.Expenses, &stats.Errors)
		}
	}

	w.logger.InfoContext(ctx, "Resync completed",
		"tasks", stats.Tasks,
		"incomes", stats.Incomes,
		"expenses", stats.Expenses,
		"errors", stats.Errors)
	return stats, ctx.Err()
}

func (w *SyncWorker) upsert(ctx context.Context, sheet string, id int64, row []string, ok, failed *int) {
	if ctx.Err() != nil {
		return
	}
	if err := w.mirror.Upsert(ctx, sheet, id, row); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror record", log.FieldSheet, sheet, log.FieldID, id, log.FieldError, err)
		*failed++
		return
	}
	*ok++
}
