package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// OptionalInt is a non-negative integer that may be absent. Decoding never
// fails: numbers are truncated, numeric strings parsed, and anything
// negative or unparseable leaves the value unset.
type OptionalInt struct {
	Value int
	Set   bool
}

func IntOf(v int) OptionalInt {
	if v < 0 {
		return OptionalInt{}
	}
	return OptionalInt{Value: v, Set: true}
}

// ParseOptionalInt coerces a query-string value.
func ParseOptionalInt(s string) OptionalInt {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return OptionalInt{}
	}
	return IntOf(n)
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*o = ParseOptionalInt(s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil && f >= 0 && f <= float64(int(^uint(0)>>1)) {
		*o = IntOf(int(f))
	}
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}
