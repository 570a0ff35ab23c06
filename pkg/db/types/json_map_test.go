package dbtypes

import "testing"

func TestJSONMapRoundTrip(t *testing.T) {
	in := JSONMap{"phone": "555-0101", "floor": "3"}
	val, err := in.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var out JSONMap
	if err := out.Scan(val); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if out["phone"] != "555-0101" || out["floor"] != "3" {
		t.Fatalf("unexpected round trip result: %+v", out)
	}
}

func TestJSONMapScanNil(t *testing.T) {
	var m JSONMap
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if m == nil || len(m) != 0 {
		t.Fatalf("expected empty map, got %+v", m)
	}
}

func TestJSONMapScanRejectsGarbage(t *testing.T) {
	var m JSONMap
	if err := m.Scan([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestJSONMapNilValue(t *testing.T) {
	var m JSONMap
	val, err := m.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if val != "{}" {
		t.Fatalf("expected empty object literal, got %v", val)
	}
}
