// Package application wires the tally domain to its outer surfaces:
// declarative collection documents, validation, and caching.
package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-tally/internal/domain"
)

// RatingConfig describes one rating entry in a collection document.
type RatingConfig struct {
	// Name identifies the rated entity. Required.
	Name string `yaml:"name" validate:"required"`

	// Score is the elo value contributed by this rating.
	// Negative values are legal.
	Score int `yaml:"score"`
}

// GroupConfig describes one ordered batch of ratings, typically a
// single ranking round.
type GroupConfig struct {
	// ID optionally labels the group for diagnostics. It has no effect
	// on aggregation.
	ID string `yaml:"id,omitempty"`

	// Ratings are the entries of this group, in document order.
	Ratings []RatingConfig `yaml:"ratings"`
}

// CollectionConfig is the root of a collection document.
// The first group in Groups defines the aggregation universe.
type CollectionConfig struct {
	// Version pins the document schema.
	Version string `yaml:"version" validate:"required,oneof=1.0"`

	// Groups are the rating groups, in document order.
	Groups []GroupConfig `yaml:"groups"`
}

// CollectionLoader provides YAML parsing, validation, and caching for
// collection documents, transforming declarative rating lists into
// domain Collections ready for aggregation.
// Use CollectionLoader to load collections from files or readers while
// benefiting from SHA256-based caching and validation.
type CollectionLoader struct {
	// validator performs struct field validation for collection
	// documents and their nested ratings.
	validator *validator.Validate
	// cache stores parsed collections indexed by SHA256 hash of the
	// normalized document to avoid re-parsing identical inputs.
	cache map[string]domain.Collection
	// cacheMu provides thread-safe access to the cache map during
	// concurrent read and write operations.
	cacheMu sync.RWMutex
	// sf prevents duplicate parsing when multiple goroutines request
	// the same document simultaneously.
	sf singleflight.Group
}

// NewCollectionLoader creates a new collection loader with validation
// capabilities and an empty cache.
func NewCollectionLoader() *CollectionLoader {
	return &CollectionLoader{
		validator: validator.New(),
		cache:     make(map[string]domain.Collection),
	}
}

// LoadFromFile loads a collection from a YAML file, utilizing
// SHA256-based caching to avoid re-parsing identical files.
// The returned collection is an independent copy; callers may mutate it
// freely without affecting the cache.
func (cl *CollectionLoader) LoadFromFile(ctx context.Context, path string) (domain.Collection, error) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return cl.load(ctx, data)
}

// LoadFromReader loads a collection from an io.Reader, supporting any
// source that implements the Reader interface. It reads all data into
// memory and applies the same caching and validation as LoadFromFile.
func (cl *CollectionLoader) LoadFromReader(ctx context.Context, r io.Reader) (domain.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return cl.load(ctx, data)
}

// load is the common implementation for loading collections from byte
// data, utilizing singleflight to collapse concurrent parses and
// SHA256-based caching for efficiency.
func (cl *CollectionLoader) load(ctx context.Context, data []byte) (domain.Collection, error) {
	config, err := cl.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCollection, err)
	}

	// Hash the normalized config, not the raw bytes, so formatting
	// differences between equivalent documents share a cache entry.
	hash, err := cl.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := cl.sf.Do(hash, func() (any, error) {
		// Check cache inside singleflight to handle the race between
		// cache check and singleflight group execution.
		if collection, ok := cl.getCached(hash); ok {
			return collection, nil
		}

		if err := cl.validateConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCollection, err)
		}

		collection := buildCollection(config)
		cl.putCached(hash, collection)

		return collection, nil
	})
	if err != nil {
		return nil, err
	}

	// Hand each caller an independent copy so cache entries stay pristine.
	return cloneCollection(v.(domain.Collection)), nil
}

// parseYAML unmarshals YAML byte data into a CollectionConfig using
// strict decoding, so unknown fields fail instead of being silently
// ignored.
func (cl *CollectionLoader) parseYAML(data []byte) (*CollectionConfig, error) {
	var config CollectionConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

// calculateConfigHash produces a SHA256 digest of the normalized
// configuration for use as a cache key.
func (cl *CollectionLoader) calculateConfigHash(config *CollectionConfig) (string, error) {
	normalized, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to normalize config: %w", err)
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}

// validateConfig performs struct field validation plus document-level
// checks that cannot be expressed through struct tags. Rating-level
// failures are aggregated into a single ValidationError so a bad
// document reports every offending entry at once.
func (cl *CollectionLoader) validateConfig(config *CollectionConfig) error {
	if err := cl.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	verr := domain.NewValidationError("collection")
	for gi, group := range config.Groups {
		for ri, rating := range group.Ratings {
			if rating.Name == "" {
				verr.AddError(fmt.Sprintf("groups[%d].ratings[%d]: name is required", gi, ri))
			}
		}
	}
	if verr.HasErrors() {
		return verr
	}

	return nil
}

// buildCollection converts a validated configuration into a domain
// Collection, preserving document order for groups and ratings.
func buildCollection(config *CollectionConfig) domain.Collection {
	collection := make(domain.Collection, 0, len(config.Groups))
	for _, group := range config.Groups {
		ratings := make(domain.Group, 0, len(group.Ratings))
		for _, r := range group.Ratings {
			ratings = append(ratings, domain.Rating{Name: r.Name, Score: r.Score})
		}
		collection = append(collection, ratings)
	}
	return collection
}

// cloneCollection deep-copies a collection so callers cannot reach the
// cached instance through shared backing arrays.
func cloneCollection(c domain.Collection) domain.Collection {
	clone := make(domain.Collection, 0, len(c))
	for _, group := range c {
		ratings := make(domain.Group, len(group))
		copy(ratings, group)
		clone = append(clone, ratings)
	}
	return clone
}

func (cl *CollectionLoader) getCached(hash string) (domain.Collection, bool) {
	cl.cacheMu.RLock()
	defer cl.cacheMu.RUnlock()
	collection, ok := cl.cache[hash]
	return collection, ok
}

func (cl *CollectionLoader) putCached(hash string, collection domain.Collection) {
	cl.cacheMu.Lock()
	defer cl.cacheMu.Unlock()
	cl.cache[hash] = collection
}
