package realtime

import (
	"encoding/json"
	"testing"
)

func row(id, body string) json.RawMessage {
	return json.RawMessage(`{"id":"` + id + `","body":"` + body + `"}`)
}

func TestViewApplyInsertUpdateDelete(t *testing.T) {
	v := NewView([]json.RawMessage{row("a", "one")})

	if !v.Apply(Event{Op: OpInsert, Record: row("b", "two")}) {
		t.Error("insert of new id should change the view")
	}
	if v.Len() != 2 {
		t.Fatalf("Len = %d, want 2", v.Len())
	}

	if !v.Apply(Event{Op: OpUpdate, Record: row("a", "updated")}) {
		t.Error("update of existing id should change the view")
	}
	if v.Len() != 2 {
		t.Errorf("Len after update = %d, want 2", v.Len())
	}

	if !v.Apply(Event{Op: OpDelete, Record: row("a", "")}) {
		t.Error("delete of existing id should change the view")
	}
	if v.Len() != 1 {
		t.Errorf("Len after delete = %d, want 1", v.Len())
	}
}

func TestViewIdempotentFold(t *testing.T) {
	v := NewView([]json.RawMessage{row("a", "one")})

	// An insert for a row already in the snapshot acts as an update.
	v.Apply(Event{Op: OpInsert, Record: row("a", "replayed")})
	if v.Len() != 1 {
		t.Fatalf("Len = %d, want 1", v.Len())
	}
	rows := v.Rows()
	var got struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(rows[0], &got); err != nil {
		t.Fatal(err)
	}
	if got.Body != "replayed" {
		t.Errorf("body = %q, want replayed", got.Body)
	}

	// Deleting a missing id is a no-op.
	if v.Apply(Event{Op: OpDelete, Record: row("zzz", "")}) {
		t.Error("delete of missing id should not change the view")
	}
}

func TestViewSkipsRecordsWithoutID(t *testing.T) {
	v := NewView([]json.RawMessage{json.RawMessage(`{"body":"no id"}`)})
	if v.Len() != 0 {
		t.Errorf("Len = %d, want 0", v.Len())
	}
	if v.Apply(Event{Op: OpInsert, Record: json.RawMessage(`not json`)}) {
		t.Error("malformed record should not change the view")
	}
}

func TestViewSortBy(t *testing.T) {
	v := NewView([]json.RawMessage{row("b", "2"), row("a", "1")})
	v.SortBy(func(x, y json.RawMessage) bool {
		var a, b struct {
			Body string `json:"body"`
		}
		json.Unmarshal(x, &a)
		json.Unmarshal(y, &b)
		return a.Body < b.Body
	})

	rows := v.Rows()
	var first struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rows[0], &first); err != nil {
		t.Fatal(err)
	}
	if first.ID != "a" {
		t.Errorf("first row id = %q, want a", first.ID)
	}
}

func TestParsePayload(t *testing.T) {
	ev, err := ParsePayload(`{"table":"chat_messages","op":"INSERT","family_id":"f1","record":{"id":"m1"}}`)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Table != TableChat || ev.Op != OpInsert || ev.FamilyID != "f1" {
		t.Errorf("unexpected event: %+v", ev)
	}

	if _, err := ParsePayload("not json"); err == nil {
		t.Error("expected error for malformed payload")
	}
}
