package mappers

import (
	"bytes"
	"encoding/json"

	"gorm.io/datatypes"
)

// toJSON encodes v for a JSON column. Empty maps and slices are stored as
// NULL.
func toJSON(v any) datatypes.JSON {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if len(t) == 0 {
			return nil
		}
	case map[string]string:
		if len(t) == 0 {
			return nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// jsonToMap keeps numbers as json.Number so large ids survive a round trip
// through the column unchanged.
func jsonToMap(data datatypes.JSON) (map[string]any, error) {
	out := make(map[string]any)
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonToStringMap(data datatypes.JSON) (map[string]string, error) {
	out := make(map[string]string)
	if len(data) == 0 || string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonInto(data datatypes.JSON, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dst)
}
