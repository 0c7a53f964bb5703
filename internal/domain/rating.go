// Package domain contains pure, dependency-free domain models and the
// score aggregation core for the tally engine.
package domain

// Rating represents one entity's elo score within a single ranking round.
// It is a plain value type with exactly two fields; aggregation reads
// ratings and never mutates them.
type Rating struct {
	// Name identifies the rated entity (e.g., a movie title).
	// Matching during aggregation is exact and case-sensitive.
	Name string `json:"name"`

	// Score is the elo value this rating contributes.
	// Negative scores are legal; aggregation is a plain integer sum.
	Score int `json:"score"`
}

// Group is one ordered batch of ratings produced by a single source,
// such as one ranking round. Order within a group does not affect
// totals, but every element is visited during aggregation.
type Group []Rating

// Collection is the full ordered set of groups passed to the aggregator.
// The first group defines the aggregation universe: only names that
// appear in it show up in aggregated output.
type Collection []Group
