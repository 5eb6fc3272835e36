package form

import (
	"context"
	"errors"
	"sync"

	"github.com/formgrid-dev/formgrid/pkg/schema"
)

// Mode distinguishes create from edit sessions.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// State is the session lifecycle: closed → open → submitting → closed, with
// an error sub-state that returns to open carrying per-field errors.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateSubmitting
)

var (
	// ErrInvalidEdit is returned when an edit session is opened with a row
	// lacking a truthy primary key value.
	ErrInvalidEdit = errors.New("invalid edit operation: row has no primary key value")
	// ErrNotOpen is returned for operations that require an open session.
	ErrNotOpen = errors.New("form session is not open")
	// ErrSubmitInFlight guards against double submits.
	ErrSubmitInFlight = errors.New("a submit is already in flight")
)

// WriteRequest is the flattened generic write payload.
type WriteRequest struct {
	Table  string
	Fields string
	Values string
}

// WriteResult is the backend's answer to a generic write. A non-200 code
// means a field-level rejection.
type WriteResult struct {
	Code       int
	Message    string
	FocusField string
	Fields     []string
}

// Submitter posts a serialized record. Implemented by the upstream client.
type Submitter interface {
	SubmitRecord(ctx context.Context, req WriteRequest) (*WriteResult, error)
}

// Outcome reports a finished submit attempt to the caller.
type Outcome struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message,omitempty"`
	FocusField string `json:"focusField,omitempty"`
	Refresh    bool   `json:"refresh"`
}

// Session owns the state of one open form: current values, validation
// errors, and the submit guard. Dependent-select values are scoped to the
// session, never shared across forms.
type Session struct {
	mu     sync.Mutex
	table  string
	fields []schema.FieldDescriptor
	mode   Mode
	state  State
	values map[string]any
	errors map[string]string
}

func NewSession(table string, fields []schema.FieldDescriptor) *Session {
	return &Session{table: table, fields: fields, state: StateClosed}
}

// OpenCreate resets the session with empty defaults: primary-key fields seed
// to 0, everything else to the empty string.
func (s *Session) OpenCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeCreate
	s.values = make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if f.IsPrimaryKey {
			s.values[f.Name] = "0"
		} else {
			s.values[f.Name] = ""
		}
	}
	s.errors = map[string]string{}
	s.state = StateOpen
}

// OpenEdit seeds the session from an existing row. The row must carry a
// truthy primary key value or the transition is rejected.
func (s *Session) OpenEdit(row map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := s.primaryKey()
	if pk == "" || !truthy(row[pk]) {
		return ErrInvalidEdit
	}
	s.mode = ModeEdit
	s.values = make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if v, ok := row[f.Name]; ok {
			s.values[f.Name] = v
		} else {
			s.values[f.Name] = ""
		}
	}
	s.errors = map[string]string{}
	s.state = StateOpen
	return nil
}

// SetValue updates one field while the session is open.
func (s *Session) SetValue(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return ErrNotOpen
	}
	s.values[name] = v
	delete(s.errors, name)
	return nil
}

// Value returns a field's current value. Dependent select widgets read their
// dependency through this accessor.
func (s *Session) Value(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}

// Errors returns a copy of the per-field error map.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// Mode returns the session mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Validate runs the required-field check against visible fields only.
// Hidden and primary-key fields are exempt. Violations fill the error map
// and must abort any network call.
func (s *Session) Validate() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked()
}

func (s *Session) validateLocked() map[string]string {
	s.errors = map[string]string{}
	for _, f := range s.fields {
		if !f.Visible() || !f.Required {
			continue
		}
		if formatValue(s.values[f.Name]) == "" {
			s.errors[f.Name] = "required field"
		}
	}
	return s.errors
}

// Serialize flattens the current values into the generic write payload.
func (s *Session) Serialize() WriteRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	campos, valores := Serialize(s.fields, s.values)
	return WriteRequest{Table: s.table, Fields: campos, Values: valores}
}

// Submit validates, serializes and posts the session. On success the session
// closes and the caller is told to refresh the table. On a field-level
// rejection the session stays open with the offending fields marked.
func (s *Session) Submit(ctx context.Context, sub Submitter) (*Outcome, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateClosed:
		s.mu.Unlock()
		return nil, ErrNotOpen
	}
	if errs := s.validateLocked(); len(errs) > 0 {
		s.mu.Unlock()
		return &Outcome{OK: false, Message: "validation failed"}, nil
	}
	campos, valores := Serialize(s.fields, s.values)
	req := WriteRequest{Table: s.table, Fields: campos, Values: valores}
	s.state = StateSubmitting
	s.mu.Unlock()

	res, err := sub.SubmitRecord(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateOpen
		return nil, err
	}
	if res.Code != 200 {
		s.state = StateOpen
		for _, f := range res.Fields {
			s.errors[f] = "required field"
		}
		if res.FocusField != "" && s.errors[res.FocusField] == "" {
			s.errors[res.FocusField] = "required field"
		}
		return &Outcome{OK: false, Message: res.Message, FocusField: res.FocusField}, nil
	}
	s.state = StateClosed
	s.values = nil
	return &Outcome{OK: true, Message: res.Message, Refresh: true}, nil
}

func (s *Session) primaryKey() string {
	for _, f := range s.fields {
		if f.IsPrimaryKey {
			return f.Name
		}
	}
	return ""
}

func truthy(v any) bool {
	s := formatValue(v)
	return s != "" && s != "0"
}
