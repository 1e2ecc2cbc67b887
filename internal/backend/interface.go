package backend

import (
	"context"
	"time"

	"lexify/internal/amqp"
	"lexify/internal/calendar"
	"lexify/internal/live"
	"lexify/internal/log"
	"lexify/internal/services"
	"lexify/internal/sheets"
	"lexify/internal/state"
	"lexify/internal/storage"
)

// Backend is the wired application: one store handle and everything built
// on top of it.
type Backend struct {
	Store     *storage.SQLiteRepository
	Calendar  *calendar.Calendar
	Hub       *live.Hub
	Tasks     *services.TaskService
	Ledger    *services.LedgerService
	Executor  *state.Executor
	Publisher *amqp.Client // nil when AMQP is disabled
	Logger    *log.Logger
}

// StateDeps returns the collaborators for the state holders.
func (b *Backend) StateDeps() state.Deps {
	return state.Deps{
		Calendar: b.Calendar,
		Tasks:    b.Tasks,
		Ledger:   b.Ledger,
		Hub:      b.Hub,
		Executor: b.Executor,
		Logger:   b.Logger,
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Mirror is a record mirror that can also be read back.
type Mirror interface {
	sheets.RecordMirror
	sheets.RowReader
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the store and wires the services on top of it.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror builds the configured mirror target.
	CreateMirror(ctx context.Context, config Config) (Mirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	DBPath   string
	Location *time.Location
	Labels   calendar.Labels
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time

	Workers      int
	DayCacheSize int
	DayCacheTTL  time.Duration

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Mirror                   MirrorType
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	SheetNames               sheets.Names
}

// MirrorType selects where records are mirrored to
type MirrorType string

const (
	MemoryMirror MirrorType = "memory"
	SheetsMirror MirrorType = "sheets"
)

// String implements fmt.Stringer
func (mt MirrorType) String() string {
	return string(mt)
}

// IsValid returns true if the mirror type is valid
func (mt MirrorType) IsValid() bool {
	switch mt {
	case MemoryMirror, SheetsMirror:
		return true
	default:
		return false
	}
}
