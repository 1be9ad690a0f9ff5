// Package reconcile computes and applies the minimal add/remove operations
// needed to make a persisted many-to-many link set match a desired set.
package reconcile

import (
	"sort"

	"github.com/google/uuid"
)

// Diff is the minimal set of operations turning current into desired.
// ToAdd and ToRemove are disjoint by construction.
type Diff struct {
	ToAdd    []uuid.UUID
	ToRemove []uuid.UUID
}

// Empty reports whether applying the diff would change nothing.
func (d Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// ComputeDiff returns the exact set differences between the persisted link
// set and the desired one: ToAdd = desired \ current, ToRemove = current \
// desired. Duplicate input IDs are collapsed. Results are sorted so a given
// input always produces the same output.
func ComputeDiff(current, desired []uuid.UUID) Diff {
	currentSet := toSet(current)
	desiredSet := toSet(desired)

	var diff Diff
	for id := range desiredSet {
		if _, ok := currentSet[id]; !ok {
			diff.ToAdd = append(diff.ToAdd, id)
		}
	}
	for id := range currentSet {
		if _, ok := desiredSet[id]; !ok {
			diff.ToRemove = append(diff.ToRemove, id)
		}
	}

	sortIDs(diff.ToAdd)
	sortIDs(diff.ToRemove)
	return diff
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
