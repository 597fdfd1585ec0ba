package db

import (
	"encoding/json"
	"testing"
)

func TestPoolHealth_Serialization(t *testing.T) {
	h := PoolHealth{
		TotalConns:    10,
		IdleConns:     6,
		AcquiredConns: 4,
		MaxConns:      20,
		Healthy:       true,
	}

	raw, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["total_conns"].(float64) != 10 {
		t.Errorf("unexpected total_conns: %v", decoded["total_conns"])
	}
	if decoded["healthy"] != true {
		t.Errorf("expected healthy true, got %v", decoded["healthy"])
	}
}
