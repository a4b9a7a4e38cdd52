// Package normalize turns loosely shaped backend JSON into the BFF's fixed types.
//
// The backend has renamed fields several times (qty/quantity, unit_price/price,
// nested product objects). Every tolerated alias lives here, in one table per
// entity: candidates are gjson paths tried in order and the first present, non-null value
// wins. Reads never fail; values that had to be dropped or clamped are recorded
// as Issues so callers can log contract drift instead of hiding it.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Issue records a value that was present upstream but could not be used as-is.
type Issue struct {
	Entity string `json:"entity"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Value  any    `json:"value,omitempty"`
}

type Issues []Issue

// Decode validates a JSON body. Blank or invalid bodies yield the zero
// Result, which reads as absent everywhere.
func Decode(body []byte) gjson.Result {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}
	}
	return gjson.ParseBytes(body)
}

// Coercer reads fields from one upstream object.
type Coercer struct {
	entity string
	obj    gjson.Result
	issues *Issues
}

// NewCoercer wraps raw; anything that is not a JSON object reads as empty.
func NewCoercer(entity string, raw gjson.Result) *Coercer {
	return &Coercer{entity: entity, obj: objectOrZero(raw), issues: &Issues{}}
}

func objectOrZero(raw gjson.Result) gjson.Result {
	if !raw.IsObject() {
		return gjson.Result{}
	}
	return raw
}

// Issues returns everything recorded by this coercer and its children.
func (c *Coercer) Issues() Issues {
	return *c.issues
}

func (c *Coercer) report(field, reason string, value any) {
	if v, ok := value.(gjson.Result); ok {
		value = v.Value()
	}
	*c.issues = append(*c.issues, Issue{Entity: c.entity, Field: field, Reason: reason, Value: value})
}

// Empty reports whether the wrapped value was not an object or had no keys.
func (c *Coercer) Empty() bool {
	empty := true
	c.obj.ForEach(func(_, _ gjson.Result) bool {
		empty = false
		return false
	})
	return empty
}

// Lookup resolves a gjson path such as "images.0.url". Null reads as absent.
func (c *Coercer) Lookup(path string) (gjson.Result, bool) {
	if !c.obj.IsObject() {
		return gjson.Result{}, false
	}
	v := c.obj.Get(path)
	return v, v.Exists() && v.Type != gjson.Null
}

// first returns the first candidate holding a non-blank scalar.
func (c *Coercer) first(paths []string) (gjson.Result, string, bool) {
	for _, p := range paths {
		v, ok := c.Lookup(p)
		if !ok || v.IsObject() || v.IsArray() {
			continue
		}
		if v.Type == gjson.String && strings.TrimSpace(v.Str) == "" {
			continue
		}
		return v, p, true
	}
	return gjson.Result{}, "", false
}

// Has reports whether any candidate path holds a scalar.
func (c *Coercer) Has(paths ...string) bool {
	_, _, ok := c.first(paths)
	return ok
}

// String returns the first candidate rendered as text; numbers and bools are formatted.
func (c *Coercer) String(paths ...string) string {
	v, _, ok := c.first(paths)
	if !ok {
		return ""
	}
	switch v.Type {
	case gjson.String:
		return strings.TrimSpace(v.Str)
	case gjson.Number:
		return v.Raw
	case gjson.True, gjson.False:
		return strconv.FormatBool(v.Bool())
	}
	return ""
}

// Float returns the first candidate as a finite number, or 0.
func (c *Coercer) Float(paths ...string) float64 {
	v, _, ok := c.first(paths)
	if !ok {
		return 0
	}
	return finite(toFloat(v))
}

// Int truncates Float.
func (c *Coercer) Int(paths ...string) int {
	return int(c.Float(paths...))
}

// Bool accepts JSON booleans, 0/1 and common string spellings.
func (c *Coercer) Bool(paths ...string) (value bool, ok bool) {
	v, _, found := c.first(paths)
	if !found {
		return false, false
	}
	switch v.Type {
	case gjson.True, gjson.False:
		return v.Bool(), true
	case gjson.Number:
		return toFloat(v) != 0, true
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true", "1", "yes", "y", "active":
			return true, true
		case "false", "0", "no", "n", "inactive":
			return false, true
		}
	}
	return false, false
}

// Money returns the first candidate as an exact decimal; unusable values become zero.
func (c *Coercer) Money(paths ...string) decimal.Decimal {
	v, _, ok := c.first(paths)
	if !ok {
		return decimal.Zero
	}
	text := v.Raw
	if v.Type == gjson.String {
		text = strings.TrimSpace(v.Str)
	} else if v.Type != gjson.Number {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(text); err == nil {
		return d
	}
	return decimal.Zero
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time returns the first candidate parsed as a timestamp. A present but
// unparseable value is reported and yields nil.
func (c *Coercer) Time(paths ...string) *time.Time {
	v, path, ok := c.first(paths)
	if !ok {
		return nil
	}
	switch v.Type {
	case gjson.String:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v.Str)); err == nil {
				return &t
			}
		}
	case gjson.Number:
		if secs := toFloat(v); finite(secs) == secs && secs > 0 {
			t := time.Unix(int64(secs), 0).UTC()
			return &t
		}
	}
	c.report(path, "unparseable timestamp", v)
	return nil
}

// Object returns a child coercer for the first candidate that is an object.
func (c *Coercer) Object(paths ...string) *Coercer {
	for _, p := range paths {
		if v, ok := c.Lookup(p); ok && v.IsObject() {
			return &Coercer{entity: c.entity, obj: v, issues: c.issues}
		}
	}
	return &Coercer{entity: c.entity, issues: c.issues}
}

// child wraps a nested value, sharing this coercer's issue list.
func (c *Coercer) child(entity string, raw gjson.Result) *Coercer {
	return &Coercer{entity: entity, obj: objectOrZero(raw), issues: c.issues}
}

// List returns the elements of the first candidate that is an array. An empty
// array yields an empty, non-nil slice.
func (c *Coercer) List(paths ...string) []gjson.Result {
	for _, p := range paths {
		if v, ok := c.Lookup(p); ok && v.IsArray() {
			return elements(v)
		}
	}
	return nil
}

func elements(arr gjson.Result) []gjson.Result {
	out := arr.Array()
	if out == nil {
		out = []gjson.Result{}
	}
	return out
}

// Strings collects string entries (or the url field of object entries) from the first array candidate.
func (c *Coercer) Strings(paths ...string) []string {
	var out []string
	for _, item := range c.List(paths...) {
		switch {
		case item.Type == gjson.String:
			if s := strings.TrimSpace(item.Str); s != "" {
				out = append(out, s)
			}
		case item.IsObject():
			if s := NewCoercer(c.entity, item).String("url", "image_url", "src", "name"); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// toFloat parses the raw number text; out-of-range values come back as Inf.
func toFloat(v gjson.Result) float64 {
	var text string
	switch v.Type {
	case gjson.Number:
		text = v.Raw
	case gjson.String:
		text = strings.TrimSpace(v.Str)
	case gjson.True:
		return 1
	default:
		return 0
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !math.IsInf(f, 0) {
		return 0
	}
	return f
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (i Issue) String() string {
	return fmt.Sprintf("%s.%s: %s", i.Entity, i.Field, i.Reason)
}
