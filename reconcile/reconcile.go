// Package reconcile keeps an in-memory list in step with a mutation the server has
// accepted, so a page does not need to refetch. Entities are matched on either of their two
// identifiers because the store is not consistent about which one it sends.
package reconcile

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Keyed is anything carrying a primary and an alternate identifier. Either may be empty.
type Keyed interface {
	Keys() (primary, alternate string)
}

// Matches reports whether e is identified by id.
func Matches[T Keyed](e T, id string) bool {
	if id == "" {
		return false
	}
	p, a := e.Keys()
	return p == id || a == id
}

// Index returns the position of the entity identified by id, or -1.
func Index[T Keyed](list []T, id string) int {
	for i, e := range list {
		if Matches(e, id) {
			return i
		}
	}
	return -1
}

// Remove returns list without the entities identified by id. Order is kept and list itself
// is not modified.
func Remove[T Keyed](list []T, id string) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if !Matches(e, id) {
			out = append(out, e)
		}
	}
	return out
}

// Replace returns a copy of list where the entity identified by id is swapped for
// merge(old). Position is kept. The second result is false when nothing matched.
func Replace[T Keyed](list []T, id string, merge func(old T) T) ([]T, bool) {
	out := make([]T, len(list))
	copy(out, list)
	i := Index(out, id)
	if i < 0 {
		return out, false
	}
	out[i] = merge(out[i])
	return out, true
}

// Overlay decodes patch on top of a copy of local: top-level fields present in patch are
// replaced wholesale, the rest of local is kept. patch must already use local's JSON field
// names. Slices and maps of local are never written through.
func Overlay[T any](local T, patch json.RawMessage) (T, error) {
	merged := local
	if len(patch) == 0 {
		return merged, nil
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(patch, &present); err != nil {
		return local, fmt.Errorf("overlay: %w", err)
	}
	clearPresent(reflect.ValueOf(&merged).Elem(), present)
	if err := json.Unmarshal(patch, &merged); err != nil {
		return local, fmt.Errorf("overlay: %w", err)
	}
	return merged, nil
}

// clearPresent zeroes the struct fields named in present so decoding allocates fresh values
// for them instead of reusing local's.
func clearPresent(v reflect.Value, present map[string]json.RawMessage) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag := sf.Tag.Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		for key := range present {
			if strings.EqualFold(key, name) {
				v.Field(i).SetZero()
				break
			}
		}
	}
}
