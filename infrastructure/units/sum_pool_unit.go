package units

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Unit = (*SumPoolUnit)(nil)

// SumPoolUnit consolidates a collection of rating groups into a single
// leaderboard by summing each entity's score across every group.
//
// The first group of the collection defines the aggregation universe:
// the output contains one entry per first-group rating, in first-group
// order, each carrying the entity's grand total across the whole
// collection. Names appearing only in later groups are ignored, and a
// name repeated in the first group is repeated in the output with the
// same recomputed total.
//
// Matching is exact, case-sensitive string equality; totals are plain
// integer sums, so traversal order cannot affect them.
//
// Concurrency: the unit is stateless and thread-safe for concurrent
// execution. Each Execute call allocates its own result, so repeated
// calls never observe each other's output.
type SumPoolUnit struct {
	// name is the unique identifier for this unit instance.
	name string
	// config contains the validated configuration parameters.
	config SumPoolConfig
}

// SumPoolConfig defines the configuration parameters for the SumPoolUnit.
// All fields are validated during unit creation and parameter unmarshaling.
type SumPoolConfig struct {
	// RequireRatings makes an empty collection (or an empty first group)
	// an error instead of an empty leaderboard. Leave false for the
	// default "sum over nothing is nothing" semantics.
	RequireRatings bool `yaml:"require_ratings" json:"require_ratings"`

	// MinGroups sets the minimum number of groups the collection must
	// contain before aggregation runs. Only enforced when RequireRatings
	// is set. Use 0 to disable.
	MinGroups int `yaml:"min_groups" json:"min_groups" validate:"min=0"`
}

// NewSumPoolUnit creates a new SumPoolUnit with the specified configuration.
//
// The name parameter serves as a unique identifier for logging and
// debugging. Returns ErrEmptyUnitName if name is empty, or a wrapped
// validation error if the configuration violates its constraints.
//
// The returned unit is immutable and thread-safe for concurrent use.
func NewSumPoolUnit(name string, config SumPoolConfig) (*SumPoolUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &SumPoolUnit{
		name:   name,
		config: config,
	}, nil
}

// Name returns the unique identifier for this unit instance.
// The returned value is immutable and safe for concurrent access.
func (spu *SumPoolUnit) Name() string { return spu.name }

// Execute aggregates the collection stored under domain.KeyCollection
// and stores the resulting leaderboard under domain.KeyLeaderboard.
//
// State requirements:
//   - domain.KeyCollection: domain.Collection with the rating groups
//
// An empty collection or empty first group produces an empty
// leaderboard unless RequireRatings is configured, in which case it is
// an error (ErrNoRatings, or ErrTooFewGroups when MinGroups is unmet).
//
// The function is safe for concurrent execution and does not modify
// the input state.
func (spu *SumPoolUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	collection, ok := domain.Get(state, domain.KeyCollection)
	if !ok {
		return state, fmt.Errorf("%w: collection", domain.ErrKeyNotFound)
	}

	if spu.config.RequireRatings {
		if len(collection) < spu.config.MinGroups {
			return state, fmt.Errorf("%w: have %d, want %d",
				ErrTooFewGroups, len(collection), spu.config.MinGroups)
		}
		if len(collection) == 0 || len(collection[0]) == 0 {
			return state, ErrNoRatings
		}
	}

	leaderboard := domain.Aggregate(collection)

	return domain.With(state, domain.KeyLeaderboard, leaderboard), nil
}

// Validate verifies the unit is properly configured.
// Returns nil if the unit is operational, or a descriptive error
// indicating the specific validation failure. Safe for concurrent use.
func (spu *SumPoolUnit) Validate() error {
	if err := validate.Struct(spu.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration into the unit's
// parameters with validation. Successfully decoded configuration
// immediately replaces the unit's current settings; on error the
// configuration remains unchanged.
func (spu *SumPoolUnit) UnmarshalParameters(params yaml.Node) error {
	var config SumPoolConfig

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	spu.config = config
	return nil
}

// DefaultSumPoolConfig returns a SumPoolConfig with defaults matching
// the plain aggregation contract: empty input yields empty output.
func DefaultSumPoolConfig() SumPoolConfig {
	return SumPoolConfig{
		RequireRatings: false,
		MinGroups:      0,
	}
}
