package validators

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Amount accepts a price sent either as a JSON number or as a string.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or numeric string")
	}
	*a = Amount(n.String())
	return nil
}
