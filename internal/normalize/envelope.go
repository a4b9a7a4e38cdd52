package normalize

import "github.com/tidwall/gjson"

// List is a normalized collection with the total the backend reported, or len(Items).
type List[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

var envelopeKeys = []string{"data", "result", "payload"}

var collectionKeys = []string{"items", "data", "results", "rows", "records", "list"}

// Unwrap strips {"data": ...} style envelopes, however deeply they are nested.
// Envelopes that carry anything besides pagination metadata are left alone.
func Unwrap(raw gjson.Result) gjson.Result {
	for i := 0; i < 4; i++ {
		if !raw.IsObject() {
			return raw
		}
		inner, ok := envelopeValue(raw)
		if !ok {
			return raw
		}
		raw = inner
	}
	return raw
}

func envelopeValue(obj gjson.Result) (gjson.Result, bool) {
	for _, key := range envelopeKeys {
		inner := obj.Get(key)
		if !inner.Exists() || inner.Type == gjson.Null {
			continue
		}
		clean := true
		obj.ForEach(func(k, _ gjson.Result) bool {
			if k.Str != key && !isEnvelopeMeta(k.Str) {
				clean = false
			}
			return clean
		})
		if !clean {
			return gjson.Result{}, false
		}
		return inner, true
	}
	return gjson.Result{}, false
}

func isEnvelopeMeta(key string) bool {
	switch key {
	case "success", "status", "message", "meta", "pagination", "total", "count", "page", "limit", "per_page", "code":
		return true
	}
	return false
}

// Items finds the array in a list response. extra names entity-specific keys
// (for example "products") tried before the generic ones.
func Items(raw gjson.Result, extra ...string) []gjson.Result {
	keys := append(append([]string{}, extra...), collectionKeys...)
	for depth := 0; depth < 4; depth++ {
		if raw.IsArray() {
			return elements(raw)
		}
		c := NewCoercer("list", raw)
		if c.Empty() {
			return nil
		}
		if arr := c.List(keys...); arr != nil {
			return arr
		}
		next := c.Object(envelopeKeys...)
		if next.Empty() {
			return nil
		}
		raw = next.obj
	}
	return nil
}

// Total returns the reported collection size, or fallback when none is present.
func Total(raw gjson.Result, fallback int) int {
	c := NewCoercer("list", raw)
	paths := []string{
		"total", "count", "total_count", "totalItems", "total_items",
		"meta.total", "pagination.total", "data.total", "data.meta.total", "data.pagination.total",
	}
	if c.Has(paths...) {
		if n := c.Int(paths...); n >= 0 {
			return n
		}
	}
	return fallback
}

// collect normalizes each element of a list response with fn.
func collect[T any](raw gjson.Result, extra []string, fn func(gjson.Result) (T, Issues)) (List[T], Issues) {
	elems := Items(raw, extra...)
	out := List[T]{Items: make([]T, 0, len(elems))}
	var issues Issues
	for _, elem := range elems {
		item, itemIssues := fn(elem)
		out.Items = append(out.Items, item)
		issues = append(issues, itemIssues...)
	}
	out.Total = Total(raw, len(out.Items))
	return out, issues
}
