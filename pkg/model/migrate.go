package model

// MigrateLegacyKeys rewrites answer maps keyed by field uuid (as older
// submissions were stored) to the canonical name keys. A uuid key is dropped
// in favour of an existing name key; keys matching no field are kept as-is.
// The input map is not modified.
func MigrateLegacyKeys(schema FormSchema, values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value
	}
	for _, field := range schema.Fields {
		canonical := field.Key()
		if field.UUID == "" || field.UUID == canonical {
			continue
		}
		legacy, ok := out[field.UUID]
		if !ok {
			continue
		}
		if _, exists := values[canonical]; !exists {
			out[canonical] = legacy
		}
		delete(out, field.UUID)
	}
	return out
}
