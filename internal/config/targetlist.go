package config

import (
	"bytes"
	"encoding/json"
)

// TargetList is the build_targets value. It decodes from a list of names or
// from a single string such as "all". Any other JSON value means "all".
type TargetList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *TargetList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = TargetList{single}
		return nil
	}

	*l = TargetList{TargetAll}
	return nil
}
