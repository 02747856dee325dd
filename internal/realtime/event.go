package realtime

import "encoding/json"

// Database operations carried on change events, matching TG_OP in the
// notifying trigger.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Tables that emit change events.
const (
	TableFinancial = "financial_arrangements"
	TableHoliday   = "holiday_arrangements"
	TableChat      = "chat_messages"
)

// WatchableTable reports whether change events exist for the table.
func WatchableTable(table string) bool {
	switch table {
	case TableFinancial, TableHoliday, TableChat:
		return true
	}
	return false
}

// Event is one row change, decoded from the NOTIFY payload the database
// trigger publishes. Record is the full row as JSON so subscribers never
// need a follow-up read.
type Event struct {
	Table    string          `json:"table"`
	Op       string          `json:"op"`
	FamilyID string          `json:"family_id"`
	Record   json.RawMessage `json:"record"`
}

// ParsePayload decodes a NOTIFY payload into an Event.
func ParsePayload(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}
