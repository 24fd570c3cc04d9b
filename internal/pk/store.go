package pk

import (
	"github.com/endosim/pk-api/internal/model"
)

// DrugStore is the engine's read-only view of the drug parameter
// catalog. Implementations must be in-memory snapshots: the engine
// performs no I/O and calls Get on every schedule entry evaluation.
type DrugStore interface {
	Get(name string) (*model.DrugRecord, bool)
}

// MapStore is a DrugStore backed by a plain map, used for snapshots
// and tests.
type MapStore map[string]*model.DrugRecord

func (s MapStore) Get(name string) (*model.DrugRecord, bool) {
	d, ok := s[name]
	return d, ok
}

// Engine evaluates pharmacokinetic simulations against a drug store.
// It holds no mutable state; construction is cheap and an Engine may
// be used from multiple goroutines.
type Engine struct {
	store DrugStore
	cfg   Config
}

// New creates an engine over the given drug store.
func New(store DrugStore, cfg Config) *Engine {
	if cfg.SolverMaxIterations == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{store: store, cfg: cfg}
}

// Config returns the engine's constants.
func (e *Engine) Config() Config {
	return e.cfg
}
