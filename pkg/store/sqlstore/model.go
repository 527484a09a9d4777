package sqlstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/goliatone/go-formcloud/pkg/answers"
)

type submission struct {
	ID          string            `gorm:"primaryKey;size:36"`
	FormID      string            `gorm:"size:255;not null;index:idx_form_submissions_form_created,priority:1"`
	FieldValues datatypes.JSONMap `gorm:"column:field_values;not null"`
	CreatedAt   time.Time         `gorm:"not null;index:idx_form_submissions_form_created,priority:2"`
}

func (submission) TableName() string {
	return "form_submissions"
}

func fromRecord(record answers.AnswerRecord) submission {
	return submission{
		ID:          record.ID.String(),
		FormID:      record.FormID,
		FieldValues: toJSONMap(record.Values),
		CreatedAt:   record.CreatedAt.UTC(),
	}
}

func (s submission) record() (answers.AnswerRecord, error) {
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return answers.AnswerRecord{}, fmt.Errorf("sqlstore: invalid id %q: %w", s.ID, err)
	}
	return answers.AnswerRecord{
		ID:        id,
		FormID:    s.FormID,
		Values:    fromJSONMap(s.FieldValues),
		CreatedAt: s.CreatedAt,
	}, nil
}

func toJSONMap(values map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func fromJSONMap(values datatypes.JSONMap) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		switch typed := v.(type) {
		case string:
			out[k] = typed
		case nil:
			out[k] = ""
		default:
			out[k] = fmt.Sprint(typed)
		}
	}
	return out
}
