package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultDelimiter separates record blocks in generated text.
const DefaultDelimiter = "---TEST_CASE---"

// DefaultIdentityFormat renders a record identity from its sequence number.
const DefaultIdentityFormat = "TC-%03d"

// Field is one named column of a record template.
type Field struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Default string `yaml:"default" json:"default"`
}

// RecordTemplate is the ordered schema generated records are parsed into.
type RecordTemplate struct {
	Fields []Field `yaml:"fields" json:"fields" validate:"required,min=1,dive"`

	// IdentityField holds the engine-assigned record identity.
	IdentityField string `yaml:"identity_field" json:"identity_field" validate:"required"`

	// TitleField is used for near-duplicate detection.
	TitleField string `yaml:"title_field" json:"title_field" validate:"required"`

	// TraceField links a record to the requirement it was generated from.
	// Empty disables requirement tracing.
	TraceField string `yaml:"trace_field" json:"trace_field"`

	// IdentityFormat is a fmt verb pattern taking one integer.
	IdentityFormat string `yaml:"identity_format" json:"identity_format" validate:"required"`

	// Delimiter separates record blocks in generated output.
	Delimiter string `yaml:"delimiter" json:"delimiter" validate:"required"`
}

// DefaultRecordTemplate returns the built-in test case template.
func DefaultRecordTemplate() RecordTemplate {
	return RecordTemplate{
		Fields: []Field{
			{Name: "Test Case ID", Default: "TC001"},
			{Name: "Requirement ID", Default: ""},
			{Name: "Test Case Title", Default: "Sample test case"},
			{Name: "Description", Default: "Test case description"},
			{Name: "Preconditions", Default: "Preconditions for the test"},
			{Name: "Test Steps", Default: "1. Step one\n2. Step two\n3. Step three\n4. Step four"},
			{Name: "Expected Result", Default: "Expected outcome"},
			{Name: "Priority", Default: "Medium"},
			{Name: "Test Type", Default: "Functional"},
			{Name: "Status", Default: "Active"},
		},
		IdentityField:  "Test Case ID",
		TitleField:     "Test Case Title",
		TraceField:     "Requirement ID",
		IdentityFormat: DefaultIdentityFormat,
		Delimiter:      DefaultDelimiter,
	}
}

// FieldNames returns the template's field names in order.
func (t RecordTemplate) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the template declares the named field.
func (t RecordTemplate) Has(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// TracesTo reports whether the record's trace field lists reqID.
// The trace field may hold several comma separated ids; matching ignores case.
func (t RecordTemplate) TracesTo(r Record, reqID string) bool {
	if t.TraceField == "" {
		return false
	}
	for _, id := range strings.Split(r.Get(t.TraceField), ",") {
		if strings.EqualFold(strings.TrimSpace(id), reqID) {
			return true
		}
	}
	return false
}

// FormatID renders a sequence number in the identity format.
func (t RecordTemplate) FormatID(n int) string {
	format := t.IdentityFormat
	if format == "" {
		format = DefaultIdentityFormat
	}
	return fmt.Sprintf(format, n)
}

// ParseID extracts the sequence number from an identity rendered by FormatID.
// Returns false when the identity does not match the format.
func (t RecordTemplate) ParseID(id string) (int, bool) {
	format := t.IdentityFormat
	if format == "" {
		format = DefaultIdentityFormat
	}
	idx := strings.Index(format, "%")
	if idx < 0 || !strings.HasPrefix(id, format[:idx]) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(id[idx:]))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Validate checks the record fields against the template.
// Unknown fields and missing fields are reported separately instead of being merged.
func (t RecordTemplate) Validate(r Record) FieldValidation {
	var v FieldValidation
	for _, f := range t.Fields {
		if _, ok := r.Fields[f.Name]; !ok {
			v.Missing = append(v.Missing, f.Name)
		}
	}
	for name := range r.Fields {
		if !t.Has(name) {
			v.Extra = append(v.Extra, name)
		}
	}
	return v
}

// FieldValidation is the outcome of checking a record against a template.
type FieldValidation struct {
	Missing []string
	Extra   []string
}

// OK reports whether the record matched the template exactly.
func (v FieldValidation) OK() bool {
	return len(v.Missing) == 0 && len(v.Extra) == 0
}

// RecordStatus is the merge outcome of a record in the current run.
type RecordStatus string

const (
	StatusCreated   RecordStatus = "created"
	StatusUpdated   RecordStatus = "updated"
	StatusUnchanged RecordStatus = "unchanged"
)

// Record is a structured test record.
type Record struct {
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Status is set by the merge and is not persisted.
	Status RecordStatus `json:"-"`
}

// NewRecord creates a record with an empty field map.
func NewRecord() Record {
	return Record{Fields: make(map[string]string)}
}

// Get returns a field value, or an empty string.
func (r Record) Get(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Set assigns a field value.
func (r *Record) Set(name, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[name] = value
}

// Clone returns a copy whose field map can be modified independently.
func (r Record) Clone() Record {
	c := r
	c.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return c
}

// SameContent compares every field, ignoring timestamps and status.
func (r Record) SameContent(other Record) bool {
	if len(r.Fields) != len(other.Fields) {
		return false
	}
	for k, v := range r.Fields {
		ov, ok := other.Fields[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// IDSequence hands out record identities for a single run.
// It is not safe for concurrent use; identities are assigned after all
// generation batches have returned.
type IDSequence struct {
	next int
}

// NewIDSequence creates a sequence whose first identity is start.
func NewIDSequence(start int) *IDSequence {
	if start < 1 {
		start = 1
	}
	return &IDSequence{next: start}
}

// Next returns the next sequence number.
func (s *IDSequence) Next() int {
	n := s.next
	s.next++
	return n
}

// Peek returns the number the next call to Next will return.
func (s *IDSequence) Peek() int {
	return s.next
}
