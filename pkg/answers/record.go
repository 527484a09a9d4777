package answers

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is one stored submission of a form. Records are replaced or
// deleted as a whole; CreatedAt never changes.
type AnswerRecord struct {
	ID        uuid.UUID         `json:"id"`
	FormID    string            `json:"parentFormId"`
	Values    map[string]string `json:"fieldValues"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NewRecord creates a record with a fresh id.
func NewRecord(formID string, values map[string]string, createdAt time.Time) AnswerRecord {
	return AnswerRecord{
		ID:        uuid.New(),
		FormID:    formID,
		Values:    cloneValues(values),
		CreatedAt: createdAt,
	}
}

// Value returns the stored answer for key.
func (r AnswerRecord) Value(key string) (string, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Clone returns a deep copy.
func (r AnswerRecord) Clone() AnswerRecord {
	r.Values = cloneValues(r.Values)
	return r
}

func cloneValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
