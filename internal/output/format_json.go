package output

import (
	"encoding/json"
)

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

// Format serializes any result value. The result structs carry json tags, so
// this covers run, sweep, and target outputs alike.
func (jf *JSONFormatter) Format(v interface{}) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}
	return string(data), nil
}
