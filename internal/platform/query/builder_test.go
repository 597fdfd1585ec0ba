package query

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuilder_Empty(t *testing.T) {
	b := New()
	if b.Where() != "" {
		t.Errorf("expected empty WHERE clause, got %q", b.Where())
	}
	if !b.Empty() {
		t.Error("expected Empty() to be true")
	}
	if len(b.Args()) != 0 {
		t.Errorf("expected no args, got %d", len(b.Args()))
	}
}

func TestBuilder_Eq(t *testing.T) {
	b := New().Eq("status", "scheduled")
	want := " WHERE status = $1"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}
	if b.Args()[0] != "scheduled" {
		t.Errorf("unexpected arg: %v", b.Args()[0])
	}
}

func TestBuilder_EqSkipsEmpty(t *testing.T) {
	b := New().Eq("status", "")
	if !b.Empty() {
		t.Error("expected empty value to be skipped")
	}
}

func TestBuilder_EqUUID(t *testing.T) {
	id := uuid.New()
	b := New().EqUUID("patient_id", id.String())
	want := " WHERE patient_id = $1"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}
	if b.Args()[0] != id {
		t.Errorf("unexpected arg: %v", b.Args()[0])
	}
}

func TestBuilder_EqUUIDSkipsInvalid(t *testing.T) {
	b := New().EqUUID("patient_id", "not-a-uuid")
	if !b.Empty() {
		t.Error("expected invalid uuid to be skipped")
	}
}

func TestBuilder_EqBool(t *testing.T) {
	b := New().EqBool("read", "true")
	want := " WHERE read = $1"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}
	if b.Args()[0] != true {
		t.Errorf("unexpected arg: %v", b.Args()[0])
	}

	if !New().EqBool("read", "maybe").Empty() {
		t.Error("expected unparseable boolean to be skipped")
	}
}

func TestBuilder_ILike(t *testing.T) {
	b := New().ILike("name", "smith")
	want := " WHERE name ILIKE $1"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}
	if b.Args()[0] != "%smith%" {
		t.Errorf("expected wrapped pattern, got %v", b.Args()[0])
	}
}

func TestBuilder_NumRange(t *testing.T) {
	b := New().GteNum("age", "18").LteNum("age", "65")
	want := " WHERE age >= $1 AND age <= $2"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}
	if b.Args()[0] != float64(18) || b.Args()[1] != float64(65) {
		t.Errorf("unexpected args: %v", b.Args())
	}
}

func TestBuilder_NumSkipsUnparseable(t *testing.T) {
	b := New().GteNum("age", "young")
	if !b.Empty() {
		t.Error("expected unparseable number to be skipped")
	}
}

func TestBuilder_TimeRange(t *testing.T) {
	b := New().GteTime("created_at", "2024-01-01").LteTime("created_at", "2024-06-30T23:59:59Z")
	want := " WHERE created_at >= $1 AND created_at <= $2"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}

	from, ok := b.Args()[0].(time.Time)
	if !ok {
		t.Fatalf("expected time.Time arg, got %T", b.Args()[0])
	}
	if from.Year() != 2024 || from.Month() != time.January {
		t.Errorf("unexpected parsed date: %v", from)
	}
}

func TestBuilder_TimeSkipsUnparseable(t *testing.T) {
	b := New().GteTime("created_at", "yesterday")
	if !b.Empty() {
		t.Error("expected unparseable time to be skipped")
	}
}

func TestBuilder_AnyUUID(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	b := New().Eq("status", "active").AnyUUID("patient_id", ids)
	want := " WHERE status = $1 AND patient_id = ANY($2)"
	if b.Where() != want {
		t.Errorf("expected %q, got %q", want, b.Where())
	}
	if len(b.Args()) != 2 {
		t.Fatalf("expected 2 args, got %d", len(b.Args()))
	}
}

func TestBuilder_PlaceholderOrdering(t *testing.T) {
	b := New().
		Eq("status", "").
		Eq("type", "checkup").
		GteNum("score", "bad").
		ILike("notes", "follow")
	want := " WHERE type = $1 AND notes ILIKE $2"
	if b.Where() != want {
		t.Errorf("skipped values must not consume placeholders: got %q", b.Where())
	}
}
