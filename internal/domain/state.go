package domain

import (
	"fmt"
	"maps"
	"reflect"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
// This function is provided for creating keys outside of the domain package.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Predefined state keys used throughout the tally pipeline.
// Each key is strongly typed to ensure type safety at compile time.
var (
	// KeyCollection stores the full ordered set of rating groups being
	// aggregated.
	KeyCollection = Key[Collection]{"collection"}

	// KeyLeaderboard stores the consolidated output of aggregation:
	// one rating per first-group entry, carrying grand totals.
	KeyLeaderboard = Key[[]Rating]{"leaderboard"}

	// KeyTallyID stores a unique identifier for this aggregation run,
	// useful for tracing and correlation.
	KeyTallyID = Key[string]{"execution.tally_id"}
)

// deepCopyValue creates a deep copy of a value to ensure true immutability.
// It handles slices, maps, and other reference types that would otherwise
// allow external modification of State data.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(reflect.ValueOf(deepCopyValue(v.Index(i).Interface())))
		}
		return newSlice.Interface()

	case reflect.Map:
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			copiedKey := deepCopyValue(key.Interface())
			copiedValue := deepCopyValue(v.MapIndex(key).Interface())
			newMap.SetMapIndex(reflect.ValueOf(copiedKey), reflect.ValueOf(copiedValue))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(reflect.ValueOf(deepCopyValue(v.Elem().Interface())))
		return newPtr.Interface()

	case reflect.Struct:
		// This performs a shallow copy for unexported fields but deep copies
		// exported fields.
		newStruct := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if newStruct.Field(i).CanSet() {
				newStruct.Field(i).Set(reflect.ValueOf(deepCopyValue(v.Field(i).Interface())))
			}
		}
		return newStruct.Interface()

	default:
		// Primitive types are returned as-is since they are copied by value.
		return value
	}
}

// State represents an immutable collection of tally data that flows
// through the pipeline. It uses copy-on-write semantics to ensure
// thread-safety and prevent unintended mutations. State is the primary
// data structure for passing information between Units.
type State struct {
	// data holds the key-value pairs that make up the state.
	// It is unexported to maintain immutability guarantees.
	data map[string]any
}

// NewState creates a new empty State.
// The returned State is ready to use and can be safely shared across
// goroutines.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type. The returned value is a deep
// copy to maintain immutability.
//
// Example:
//
//	collection, ok := Get(state, KeyCollection)
//	if !ok {
//	    // handle missing value
//	}
//	// collection is typed as Collection, no type assertion needed
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}

	copied := deepCopyValue(value)
	val, ok := copied.(T)
	return val, ok
}

// With creates a new State with the specified key-value pair added or
// updated. It implements copy-on-write semantics, returning a new State
// instance while leaving the original unchanged. This function is the
// primary way to add or update data in a State.
//
// Example:
//
//	newState := With(state, KeyCollection, rounds)
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	newData[key.name] = deepCopyValue(value)
	return State{data: newData}
}

// Keys returns all keys present in the State.
// The returned slice can be used to iterate over all stored values and
// is safe to modify without affecting the original State.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// String returns a string representation of the State for debugging purposes.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.data)
}
