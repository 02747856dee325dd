package realtime

import (
	"encoding/json"
	"sort"
)

// View maintains a client-side picture of one table's rows for one family,
// folding change events into a snapshot loaded from an authoritative read.
// The fold is idempotent so replaying an event already reflected in the
// snapshot cannot corrupt the view: inserting an id that exists behaves as
// an update, deleting a missing id is a no-op.
type View struct {
	rows  map[string]json.RawMessage
	order []string
}

// NewView builds a view from snapshot rows. Each row must be a JSON object
// with a string "id" field; rows without one are skipped.
func NewView(snapshot []json.RawMessage) *View {
	v := &View{rows: make(map[string]json.RawMessage)}
	for _, row := range snapshot {
		id, ok := recordID(row)
		if !ok {
			continue
		}
		v.upsert(id, row)
	}
	return v
}

// Apply folds one change event into the view and reports whether the view
// changed.
func (v *View) Apply(ev Event) bool {
	id, ok := recordID(ev.Record)
	if !ok {
		return false
	}

	switch ev.Op {
	case OpInsert, OpUpdate:
		v.upsert(id, ev.Record)
		return true
	case OpDelete:
		if _, exists := v.rows[id]; !exists {
			return false
		}
		delete(v.rows, id)
		for i, existing := range v.order {
			if existing == id {
				v.order = append(v.order[:i], v.order[i+1:]...)
				break
			}
		}
		return true
	}
	return false
}

// Rows returns the current rows in insertion order.
func (v *View) Rows() []json.RawMessage {
	out := make([]json.RawMessage, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.rows[id])
	}
	return out
}

// Len returns the number of rows in the view.
func (v *View) Len() int {
	return len(v.rows)
}

// SortBy reorders the view using a comparison over the raw rows.
func (v *View) SortBy(less func(a, b json.RawMessage) bool) {
	sort.SliceStable(v.order, func(i, j int) bool {
		return less(v.rows[v.order[i]], v.rows[v.order[j]])
	})
}

func (v *View) upsert(id string, row json.RawMessage) {
	if _, exists := v.rows[id]; !exists {
		v.order = append(v.order, id)
	}
	v.rows[id] = row
}

func recordID(record json.RawMessage) (string, bool) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(record, &probe); err != nil || probe.ID == "" {
		return "", false
	}
	return probe.ID, true
}
