package tui

import "fmt"

// State tracks collected values and previously reported errors keyed by field
// name. Values are recorded in form order so text outputs follow the form.
type State struct {
	values map[string]any
	order  []string
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	s := &State{
		values: make(map[string]any, len(prefill)),
		errors: make(map[string][]string, len(errs)),
	}
	for key, value := range prefill {
		s.values[key] = value
	}
	for key, messages := range errs {
		s.errors[key] = append([]string(nil), messages...)
	}
	return s
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// Order returns the field names set through SetValue, in call order.
func (s *State) Order() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// ErrorsFor returns the errors attached to a field.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// GetValue returns the value recorded for a field.
func (s *State) GetValue(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[name]
	return value, ok && value != nil
}

// SetValue records a collected value and clears the field's stale errors.
func (s *State) SetValue(name string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if name == "" {
		return fmt.Errorf("tui: field name is required")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if !containsString(s.order, name) {
		s.order = append(s.order, name)
	}
	s.values[name] = value
	delete(s.errors, name)
	return nil
}

func containsString(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
