// Package slots holds the static intent-to-slot configuration that drives the
// dialogue: which slots each intent needs, in which order they are asked for,
// and the prompt shown for each of them.
package slots

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vistara/internal/domain"
)

const DefaultWelcome = "👋 Hi there! Welcome to Vistara Chatbot. How can I assist you?"

type IntentSpec struct {
	Name  string   `yaml:"name"`
	Slots []string `yaml:"slots"`
	// TimeRange enables first-turn "3pm to 5pm" extraction into start_time/end_time.
	TimeRange bool `yaml:"time_range"`
}

// Schema is read-only once built; share it freely between goroutines.
type Schema struct {
	Intents   []IntentSpec      `yaml:"intents"`
	Prompts   map[string]string `yaml:"prompts"`
	Greetings []string          `yaml:"greetings"`
	Welcome   string            `yaml:"welcome"`

	byName    map[string]IntentSpec
	greetings map[string]struct{}
}

func Default() *Schema {
	s := &Schema{
		Intents: []IntentSpec{
			{
				Name: domain.IntentCreateEvent,
				Slots: []string{
					domain.SlotTitle,
					domain.SlotDate,
					domain.SlotStartTime,
					domain.SlotEndTime,
					domain.SlotLocation,
					domain.SlotDescription,
				},
				TimeRange: true,
			},
			{
				Name:  domain.IntentCreateContent,
				Slots: []string{domain.SlotContentType, domain.SlotDate, domain.SlotMessage},
			},
		},
		Prompts: map[string]string{
			domain.SlotTitle:       "What’s the title of the event?",
			domain.SlotDate:        "On which date should it happen?",
			domain.SlotStartTime:   "What time should it start?",
			domain.SlotEndTime:     "What time should it end?",
			domain.SlotLocation:    "Where will it take place?",
			domain.SlotDescription: "How would you describe it?",
			domain.SlotContentType: "What is it about",
			domain.SlotMessage:     "What’s the content message?",
		},
		Greetings: []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"},
		Welcome:   DefaultWelcome,
	}
	if err := s.init(); err != nil {
		panic(fmt.Sprintf("slots: invalid default schema: %v", err))
	}
	return s
}

// Load reads a schema from a YAML file. An empty path yields Default().
func Load(path string) (*Schema, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slot schema: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode slot schema: %w", err)
	}
	if strings.TrimSpace(s.Welcome) == "" {
		s.Welcome = DefaultWelcome
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) init() error {
	if len(s.Intents) == 0 {
		return errors.New("slot schema has no intents")
	}
	s.byName = make(map[string]IntentSpec, len(s.Intents))
	for i, in := range s.Intents {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return fmt.Errorf("intent #%d has no name", i)
		}
		if _, dup := s.byName[name]; dup {
			return fmt.Errorf("duplicate intent %q", name)
		}
		if len(in.Slots) == 0 {
			return fmt.Errorf("intent %q has no slots", name)
		}
		seen := make(map[string]struct{}, len(in.Slots))
		for _, slot := range in.Slots {
			if _, dup := seen[slot]; dup {
				return fmt.Errorf("intent %q lists slot %q twice", name, slot)
			}
			seen[slot] = struct{}{}
			if strings.TrimSpace(s.Prompts[slot]) == "" {
				return fmt.Errorf("slot %q has no prompt", slot)
			}
		}
		in.Name = name
		s.Intents[i] = in
		s.byName[name] = in
	}
	s.greetings = make(map[string]struct{}, len(s.Greetings))
	for _, g := range s.Greetings {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			s.greetings[g] = struct{}{}
		}
	}
	return nil
}

// IntentNames returns the candidate set in configured order.
func (s *Schema) IntentNames() []string {
	out := make([]string, 0, len(s.Intents))
	for _, in := range s.Intents {
		out = append(out, in.Name)
	}
	return out
}

func (s *Schema) RequiredSlots(intent string) ([]string, bool) {
	in, ok := s.byName[intent]
	if !ok {
		return nil, false
	}
	return append([]string(nil), in.Slots...), true
}

func (s *Schema) Requires(intent, slot string) bool {
	in, ok := s.byName[intent]
	if !ok {
		return false
	}
	for _, name := range in.Slots {
		if name == slot {
			return true
		}
	}
	return false
}

func (s *Schema) HasTimeRange(intent string) bool {
	return s.byName[intent].TimeRange
}

func (s *Schema) Prompt(slot string) string {
	return s.Prompts[slot]
}

func (s *Schema) IsGreeting(text string) bool {
	_, ok := s.greetings[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// NextMissing returns the first slot of intent, in schema order, absent from filled.
func (s *Schema) NextMissing(intent string, filled map[string]string) (string, bool) {
	in, ok := s.byName[intent]
	if !ok {
		return "", false
	}
	for _, slot := range in.Slots {
		if _, ok := filled[slot]; !ok {
			return slot, true
		}
	}
	return "", false
}
