package schema

import "time"

// Stage names the step of the field pipeline that fell back.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageCoerce  Stage = "coerce"
	StageFormat  Stage = "format"
)

// FieldEvent describes a field-level problem that was absorbed.
type FieldEvent struct {
	Schema string `json:"schema"`
	Field  string `json:"field"` // output path, e.g. users[0].email
	Stage  Stage  `json:"stage"`
	Value  any    `json:"value,omitempty"` // value substituted in the output
	Err    error  `json:"-"`
}

// RecordEvent is emitted once per top-level record, after it was transformed.
type RecordEvent struct {
	Schema   string        `json:"schema"`
	Path     string        `json:"path,omitempty"` // [i] inside a batch
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Hooks defines callbacks for transformation observability. Callbacks run
// synchronously on the transforming goroutine.
type Hooks struct {
	OnField  func(*FieldEvent)
	OnRecord func(*RecordEvent)
}

func (h Hooks) field(e *FieldEvent) {
	if h.OnField != nil {
		h.OnField(e)
	}
}

func (h Hooks) record(e *RecordEvent) {
	if h.OnRecord != nil {
		h.OnRecord(e)
	}
}
