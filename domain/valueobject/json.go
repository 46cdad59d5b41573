package valueobject

import (
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
)

// canonicalJSON sorts map keys, so equal documents built from maps have equal text.
var canonicalJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const emptyJSONObject = "{}"

// JSON is a valid JSON document kept in its text form.
type JSON struct {
	value string
}

func ParseJSON(value string) (JSON, error) {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" || !canonicalJSON.Valid([]byte(trimmed)) {
		return JSON{}, domain.NewValidationError("json", "invalid document")
	}

	return JSON{value: trimmed}, nil
}

func JSONFromMap(data map[string]any) (JSON, error) {
	if data == nil {
		return EmptyJSON(), nil
	}

	encoded, err := canonicalJSON.Marshal(data)
	if err != nil {
		return JSON{}, domain.NewValidationError("json", err.Error())
	}

	return JSON{value: string(encoded)}, nil
}

func EmptyJSON() JSON {
	return JSON{value: emptyJSONObject}
}

func (j JSON) String() string {
	if j.value == "" {
		return emptyJSONObject
	}

	return j.value
}

// ToMap decodes an object document. Non-object documents fail with a validation error.
func (j JSON) ToMap() (map[string]any, error) {
	data := make(map[string]any)

	if err := canonicalJSON.UnmarshalFromString(j.String(), &data); err != nil {
		return nil, domain.NewValidationError("json", "document is not an object")
	}

	return data, nil
}

func (j JSON) Get(key string) (any, bool) {
	data, err := j.ToMap()
	if err != nil {
		return nil, false
	}

	value, ok := data[key]

	return value, ok
}

func (j JSON) Has(key string) bool {
	_, ok := j.Get(key)
	return ok
}

// With returns a new document with key set to value.
func (j JSON) With(key string, value any) (JSON, error) {
	data, err := j.ToMap()
	if err != nil {
		return JSON{}, err
	}

	data[key] = value

	return JSONFromMap(data)
}

// Merge returns a new document where keys of other win.
func (j JSON) Merge(other JSON) (JSON, error) {
	data, err := j.ToMap()
	if err != nil {
		return JSON{}, err
	}

	otherData, err := other.ToMap()
	if err != nil {
		return JSON{}, err
	}

	for key, value := range otherData {
		data[key] = value
	}

	return JSONFromMap(data)
}

func (j JSON) IsEmpty() bool {
	data, err := j.ToMap()
	return err == nil && len(data) == 0
}

func (j JSON) Equals(other JSON) bool {
	return j.String() == other.String()
}

func (j JSON) MarshalJSON() ([]byte, error) {
	return []byte(j.String()), nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(string(data))
	if err != nil {
		return err
	}

	*j = parsed

	return nil
}
