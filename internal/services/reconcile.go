package services

import "github.com/google/uuid"

// RetentionPolicy selects how a submitted entry set replaces the persisted
// one. Each entry kind declares its policy once instead of branching at
// every call site.
type RetentionPolicy int

const (
	// PolicyReplace clears the persisted set and rewrites it from the
	// submission. Work items have no per-parent natural key (two items may
	// reference the same mission), so true diffing cannot name "the same
	// slot"; clear-and-rewrite is the safe declared behavior.
	PolicyReplace RetentionPolicy = iota

	// PolicyDiffDelete updates matches, inserts unknowns, and deletes
	// persisted entries missing from the submission. Used for appeals.
	PolicyDiffDelete

	// PolicyDiffKeep updates matches and inserts unknowns but never
	// deletes; removal is a separate explicit operation. Used for
	// standing troubles, which outlive any single report.
	PolicyDiffKeep
)

// EntryRecord is the reconciliation contract shared by the entry kinds.
// Matching is by stable ID only, never by content.
type EntryRecord interface {
	EntryID() string
	SetEntryID(id string)
	Blank() bool
}

// Changes is the disjoint outcome of one reconciliation.
type Changes[T EntryRecord] struct {
	ToInsert    []T
	ToUpdate    []T
	ToDeleteIDs []string
}

func (c Changes[T]) Empty() bool {
	return len(c.ToInsert) == 0 && len(c.ToUpdate) == 0 && len(c.ToDeleteIDs) == 0
}

// Reconcile diffs a submitted entry list against the persisted list for the
// same parent. Blank submitted entries are dropped before diffing; a
// submitted entry without an ID gets a fresh UUID and becomes an insert.
func Reconcile[T EntryRecord](submitted, persisted []T, policy RetentionPolicy) Changes[T] {
	kept := make([]T, 0, len(submitted))
	for _, e := range submitted {
		if !e.Blank() {
			kept = append(kept, e)
		}
	}

	var changes Changes[T]

	if policy == PolicyReplace {
		for _, p := range persisted {
			changes.ToDeleteIDs = append(changes.ToDeleteIDs, p.EntryID())
		}
		for _, e := range kept {
			if e.EntryID() == "" {
				e.SetEntryID(uuid.NewString())
			}
			changes.ToInsert = append(changes.ToInsert, e)
		}
		return changes
	}

	persistedIDs := make(map[string]struct{}, len(persisted))
	for _, p := range persisted {
		persistedIDs[p.EntryID()] = struct{}{}
	}

	submittedIDs := make(map[string]struct{}, len(kept))
	for _, e := range kept {
		id := e.EntryID()
		if id == "" {
			id = uuid.NewString()
			e.SetEntryID(id)
		}
		submittedIDs[id] = struct{}{}

		if _, ok := persistedIDs[id]; ok {
			changes.ToUpdate = append(changes.ToUpdate, e)
		} else {
			changes.ToInsert = append(changes.ToInsert, e)
		}
	}

	if policy == PolicyDiffDelete {
		for _, p := range persisted {
			if _, ok := submittedIDs[p.EntryID()]; !ok {
				changes.ToDeleteIDs = append(changes.ToDeleteIDs, p.EntryID())
			}
		}
	}

	return changes
}
