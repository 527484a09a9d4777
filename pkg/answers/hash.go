package answers

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formcloud/pkg/model"
)

// HashPasswords returns a copy of values with every password answer replaced
// by its bcrypt hash. Values that already are bcrypt hashes and empty values
// are left alone.
func HashPasswords(schema model.FormSchema, values map[string]string, cost int) (map[string]string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out := cloneValues(values)
	for _, field := range schema.Fields {
		if field.Type != model.FieldTypePassword {
			continue
		}
		key := field.Key()
		plain, ok := out[key]
		if !ok || plain == "" || IsHashed(plain) {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
		if err != nil {
			return nil, fmt.Errorf("answers: hash %q: %w", key, err)
		}
		out[key] = string(hashed)
	}
	return out, nil
}

// IsHashed reports whether value is a bcrypt hash.
func IsHashed(value string) bool {
	_, err := bcrypt.Cost([]byte(value))
	return err == nil
}

// CheckPassword compares a stored answer with a plain-text candidate.
func CheckPassword(stored, candidate string) bool {
	if !IsHashed(stored) {
		return stored == candidate
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
