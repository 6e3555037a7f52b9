package domain

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var robots []Robot
	raw := `[{"id":42,"name":"BAR1","store_id":"7"},{"id":"r-2","name":"BAR2","store_id":null}]`
	if err := json.Unmarshal([]byte(raw), &robots); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if robots[0].ID != "42" || robots[0].StoreID != "7" {
		t.Fatalf("first robot = %+v", robots[0])
	}
	if robots[1].ID != "r-2" || robots[1].StoreID != "" {
		t.Fatalf("second robot = %+v", robots[1])
	}
}

func TestIDRejectsObjects(t *testing.T) {
	var org Organization
	if err := json.Unmarshal([]byte(`{"id":{"x":1}}`), &org); err == nil {
		t.Fatalf("expected error for object id")
	}
}
