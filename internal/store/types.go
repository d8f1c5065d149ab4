package store

import "time"

// Observation kinds. A refresh observation comes from the batch refresh or
// the get command, a snapshot observation from an explicit snapshot, and a
// watch observation from a script-change trigger in watch mode.
const (
	KindRefresh  = "refresh"
	KindSnapshot = "snapshot"
	KindWatch    = "watch"
)

// Observation records one measurement of an app's checker script.
type Observation struct {
	ID         int64
	App        string
	Value      string // empty when the check failed
	OK         bool   // false when the check was coerced to "no value"
	Kind       string // KindRefresh, KindSnapshot, or KindWatch
	ObservedAt time.Time
}
