package message

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

func testSnapshot(route ...string) vehicle.Snapshot {
	return vehicle.Snapshot{
		ID:       "veh0",
		Position: vehicle.Position{X: 501.5, Y: 488.25},
		Speed:    11.2,
		Heading:  90,
		Route:    route,
	}
}

func TestPacket_FieldOrder(t *testing.T) {
	p := FromSnapshot(testSnapshot("e1", "e2"))

	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	s := string(b)
	order := []string{`"id"`, `"position"`, `"speed"`, `"angle"`, `"route"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(s, key)
		if idx < 0 {
			t.Fatalf("encoded packet missing %s: %s", key, s)
		}
		if idx < last {
			t.Errorf("field %s out of order in %s", key, s)
		}
		last = idx
	}
}

func TestPacket_SizeDeterministic(t *testing.T) {
	p := FromSnapshot(testSnapshot("e1", "e2", "e3"))

	first, err := p.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	second, err := p.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if first != second {
		t.Errorf("Size() not deterministic: %d then %d", first, second)
	}
}

func TestPacket_SizeGrowsWithRoute(t *testing.T) {
	short := FromSnapshot(testSnapshot("e1"))
	long := FromSnapshot(testSnapshot("e1", "e2", "e3", "e4", "e5"))

	shortSize, err := short.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	longSize, err := long.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if longSize <= shortSize {
		t.Errorf("payload size must grow with route length: short=%d long=%d", shortSize, longSize)
	}
}

func TestPacket_NilRouteEncodesAsEmptyArray(t *testing.T) {
	p := FromSnapshot(vehicle.Snapshot{ID: "veh1"})

	b, err := p.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	var decoded struct {
		Route []string `json:"route"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Route == nil {
		t.Error("route must encode as an empty array, not null")
	}
}
