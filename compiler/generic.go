package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// Converts the generic tree decoded from the manifest into a tree that can
// be serialized to JSON. The mappings with non-string keys are converted to
// the mappings with string keys.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(typed))
		for key, nested := range typed {
			normalized[key] = normalize(nested)
		}
		return normalized
	case map[any]any:
		normalized := make(map[string]any, len(typed))
		for key, nested := range typed {
			normalized[fmt.Sprint(key)] = normalize(nested)
		}
		return normalized
	case []any:
		normalized := make([]any, 0, len(typed))
		for _, nested := range typed {
			normalized = append(normalized, normalize(nested))
		}
		return normalized
	default:
		return value
	}
}

// Serializes the value to the compact JSON that is embedded in the
// rendered configuration. The HTML characters are not escaped.
func toRawJSON(value any) (json.RawMessage, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, errors.Wrap(err, "cannot serialize the parameters")
	}
	return json.RawMessage(bytes.TrimSpace(buffer.Bytes())), nil
}
