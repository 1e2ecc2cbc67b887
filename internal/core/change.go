package core

import "time"

// RecordKind names the stored entity a change refers to.
type RecordKind string

const (
	KindTask    RecordKind = "task"
	KindIncome  RecordKind = "income"
	KindExpense RecordKind = "expense"
)

// ChangeOp is the kind of write that produced a change.
type ChangeOp string

const (
	OpUpsert ChangeOp = "upsert"
	OpDelete ChangeOp = "delete"
)

// Change describes one committed write.
type Change struct {
	Kind RecordKind
	Op   ChangeOp
	ID   int64
	// Date is the record timestamp; for deletes it is the timestamp the
	// record had before removal when known.
	Date time.Time
}
