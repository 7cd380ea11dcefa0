package seed

import (
	"context"
	"time"

	"github.com/seedtools/shopseed/internal/database"
)

// Entity identifies one of the six imported row shapes.
type Entity string

const (
	EntityProducts      Entity = "products"
	EntityUsers         Entity = "users"
	EntityAddresses     Entity = "addresses"
	EntityCarts         Entity = "carts"
	EntityOrders        Entity = "orders"
	EntityOrderProducts Entity = "order_products"
)

// ImportOrder is the fixed dependency order entities are imported in.
var ImportOrder = []Entity{
	EntityProducts,
	EntityUsers,
	EntityAddresses,
	EntityCarts,
	EntityOrders,
	EntityOrderProducts,
}

// SourceFile returns the file name an entity is read from.
func (e Entity) SourceFile() string {
	return string(e) + ".csv"
}

// Store is the table-scoped persistence interface the pipeline writes
// through. Satisfied by *database.Queries over a pool or a transaction.
type Store interface {
	ResetProducts(ctx context.Context) error
	ResetUsers(ctx context.Context) error
	ResetAddresses(ctx context.Context) error
	ResetCarts(ctx context.Context) error
	ResetOrders(ctx context.Context) error
	ResetOrderProducts(ctx context.Context) error

	InsertProducts(ctx context.Context, rows []database.Product) (int64, error)
	InsertUsers(ctx context.Context, rows []database.User) (int64, error)
	InsertAddresses(ctx context.Context, rows []database.Address) (int64, error)
	InsertCarts(ctx context.Context, rows []database.Cart) (int64, error)
	InsertOrders(ctx context.Context, rows []database.Order) (int64, error)
	InsertOrderProducts(ctx context.Context, rows []database.OrderProduct) (int64, error)
}

// Phase indicates the current stage of an import run.
type Phase string

const (
	PhaseResetting              Phase = "resetting"
	PhaseImportingProducts      Phase = "importing_products"
	PhaseImportingUsers         Phase = "importing_users"
	PhaseImportingAddresses     Phase = "importing_addresses"
	PhaseImportingCarts         Phase = "importing_carts"
	PhaseImportingOrders        Phase = "importing_orders"
	PhaseImportingOrderProducts Phase = "importing_order_products"
	PhaseDone                   Phase = "done"
	PhaseFailed                 Phase = "failed"
)

// importPhase maps each entity to its orchestrator phase.
var importPhase = map[Entity]Phase{
	EntityProducts:      PhaseImportingProducts,
	EntityUsers:         PhaseImportingUsers,
	EntityAddresses:     PhaseImportingAddresses,
	EntityCarts:         PhaseImportingCarts,
	EntityOrders:        PhaseImportingOrders,
	EntityOrderProducts: PhaseImportingOrderProducts,
}

// RowWarning records a single dropped source row.
type RowWarning struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// EntityResult is the per-entity outcome of a run.
type EntityResult struct {
	Entity   Entity `json:"entity"`
	Read     int    `json:"read"`
	Accepted int    `json:"accepted"`
	Skipped  int    `json:"skipped"`

	// DefaultedTimestamps counts rows whose created timestamp was missing
	// or unparsable and fell back to the run's import time.
	DefaultedTimestamps int `json:"defaultedTimestamps,omitempty"`

	Warnings []RowWarning `json:"warnings,omitempty"`
}

// RunReport is the explicit, queryable state of one import run.
type RunReport struct {
	RunID      string         `json:"runId"`
	Phase      Phase          `json:"phase"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt,omitzero"`
	Entities   []EntityResult `json:"entities"`
	Error      string         `json:"error,omitempty"`
}

// Result returns the result for an entity, or nil if that step never ran.
func (r *RunReport) Result(e Entity) *EntityResult {
	for i := range r.Entities {
		if r.Entities[i].Entity == e {
			return &r.Entities[i]
		}
	}
	return nil
}
