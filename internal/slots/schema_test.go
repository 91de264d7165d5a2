package slots

import (
	"testing"

	"vistara/internal/domain"
)

func TestDefaultSchemaOrder(t *testing.T) {
	s := Default()
	names := s.IntentNames()
	if len(names) != 2 || names[0] != domain.IntentCreateEvent || names[1] != domain.IntentCreateContent {
		t.Fatalf("intent names=%v", names)
	}
	got, ok := s.RequiredSlots(domain.IntentCreateContent)
	if !ok {
		t.Fatalf("create_content missing")
	}
	want := []string{"content_type", "date", "message"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slots=%v, want %v", got, want)
		}
	}
	if !s.HasTimeRange(domain.IntentCreateEvent) || s.HasTimeRange(domain.IntentCreateContent) {
		t.Fatalf("time range flags wrong")
	}
}

func TestRequiredSlotsReturnsCopy(t *testing.T) {
	s := Default()
	got, _ := s.RequiredSlots(domain.IntentCreateEvent)
	got[0] = "mutated"
	again, _ := s.RequiredSlots(domain.IntentCreateEvent)
	if again[0] != domain.SlotTitle {
		t.Fatalf("schema mutated through returned slice: %v", again)
	}
}

func TestIsGreeting(t *testing.T) {
	s := Default()
	tests := []struct {
		in   string
		want bool
	}{
		{"hello", true},
		{"  Good Morning ", true},
		{"HEY", true},
		{"hello there", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := s.IsGreeting(tt.in); got != tt.want {
			t.Fatalf("IsGreeting(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNextMissing(t *testing.T) {
	s := Default()
	slot, ok := s.NextMissing(domain.IntentCreateEvent, map[string]string{"title": "x", "start_time": "10:00"})
	if !ok || slot != domain.SlotDate {
		t.Fatalf("next=%q ok=%v, want date", slot, ok)
	}
	_, ok = s.NextMissing(domain.IntentCreateContent, map[string]string{"content_type": "a", "date": "b", "message": "c"})
	if ok {
		t.Fatalf("expected no missing slot")
	}
	if _, ok := s.NextMissing("unknown", nil); ok {
		t.Fatalf("unknown intent should report no slot")
	}
}

func TestParseYAML(t *testing.T) {
	raw := []byte(`
intents:
  - name: book_room
    slots: [room, date]
prompts:
  room: Which room?
  date: Which day?
greetings: [yo]
`)
	s, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Welcome != DefaultWelcome {
		t.Fatalf("welcome=%q", s.Welcome)
	}
	if !s.Requires("book_room", "room") || s.Requires("book_room", "title") {
		t.Fatalf("requires mismatch")
	}
	if !s.IsGreeting("Yo") {
		t.Fatalf("custom greeting not recognised")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no intents":     `prompts: {a: b}`,
		"missing prompt": "intents:\n  - name: x\n    slots: [a]\n",
		"no slots":       "intents:\n  - name: x\n",
		"duplicate":      "intents:\n  - name: x\n    slots: [a]\n  - name: x\n    slots: [a]\nprompts: {a: A}\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
