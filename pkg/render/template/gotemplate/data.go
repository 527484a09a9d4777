package gotemplate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// toContext turns view data into a pongo2.Context. Structs are encoded to
// JSON first so templates see their json names; maps are walked so that
// functions stored in them stay callable.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}

	var fields map[string]any
	switch v := data.(type) {
	case pongo2.Context:
		fields = v
	case map[string]any:
		fields = v
	default:
		decoded, err := roundTrip(v)
		if err != nil {
			return nil, err
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("view data must encode to an object, got %T", decoded)
		}
		fields = obj
	}

	ctx := make(pongo2.Context, len(fields))
	for key, value := range fields {
		if key = strings.TrimSpace(key); key == "" {
			continue
		}
		plain, err := toPlain(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		ctx[key] = plain
	}
	return ctx, nil
}

// toPlain reduces value to what encoding/json decodes into, keeping
// functions and scalars as they are.
func toPlain(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	case pongo2.Context:
		return plainMap(v)
	case map[string]any:
		return plainMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			plain, err := toPlain(item)
			if err != nil {
				return nil, err
			}
			out[i] = plain
		}
		return out, nil
	}
	if reflect.TypeOf(value).Kind() == reflect.Func {
		return value, nil
	}

	decoded, err := roundTrip(value)
	if err != nil {
		return nil, err
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return toPlain(decoded)
	}
	return decoded, nil
}

func plainMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		plain, err := toPlain(value)
		if err != nil {
			return nil, err
		}
		out[key] = plain
	}
	return out, nil
}

func roundTrip(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
