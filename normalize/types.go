package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// text accepts a JSON string or number. Objects, arrays and null decode to "".
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	switch firstByte(b) {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(strings.TrimSpace(s))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = text(strings.TrimSpace(string(b)))
	case 't', 'f':
		*t = text(string(b))
	default:
		*t = ""
	}
	return nil
}

// number accepts a JSON number or a numeric string. null and "" decode to 0.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*n = 0
		return nil
	}
	if firstByte(b) == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		*n = number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// stamp accepts RFC 3339 strings, plain dates and Unix milliseconds.
type stamp time.Time

var stampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func (s *stamp) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	if firstByte(b) == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		for _, layout := range stampLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				*s = stamp(t)
				return nil
			}
		}
		return fmt.Errorf("unrecognised time %q", v)
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	*s = stamp(time.UnixMilli(ms).UTC())
	return nil
}

func (s stamp) Time() time.Time { return time.Time(s) }

// stringList decodes an array of image references. Strings are kept as is, objects
// contribute their "url" (or "src"); anything else, including a non-array value, yields an
// empty list.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	out := []string{}
	if !isArray(b) {
		*l = out
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		*l = out
		return nil
	}
	for _, it := range items {
		switch firstByte(it) {
		case '"':
			var s string
			if json.Unmarshal(it, &s) == nil && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		case '{':
			var obj struct {
				URL text `json:"url"`
				Src text `json:"src"`
			}
			if json.Unmarshal(it, &obj) == nil {
				if obj.URL != "" {
					out = append(out, string(obj.URL))
				} else if obj.Src != "" {
					out = append(out, string(obj.Src))
				}
			}
		}
	}
	*l = out
	return nil
}

// firstNonEmpty returns the first non-empty candidate.
func firstNonEmpty(vals ...text) string {
	for _, v := range vals {
		if v != "" {
			return string(v)
		}
	}
	return ""
}
