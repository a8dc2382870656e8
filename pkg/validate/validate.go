// Package validate provides struct-tag validation for request payloads.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must be present and not zero/empty
//	nullable            if absent or empty, skip the remaining rules
//	email               valid email address
//	url                 valid URL (http/https)
//	username            letters, digits and @ . + - _ only
//	integer             whole number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gt=N                number > N
//	gte=N               number >= N
//	lte=N               number <= N
//	between=min,max     number or string length between min and max (inclusive)
//	step=N              number must be a whole multiple of N
//	in=a,b,c            value must be one of the listed items
//	not_in=a,b,c        value must NOT be one of the listed items
//	regex=pattern       value must match the regex (avoid commas in pattern)
//
// Pointer fields model optional PATCH input: a nil pointer counts as
// absent, otherwise rules apply to the pointed-to value.
//
// Example:
//
//	type ReviewInput struct {
//	    Product     string  `json:"product"     validate:"required"`
//	    Rating      float64 `json:"rating"      validate:"required,between=0.5,5,step=0.5"`
//	    Description string  `json:"description" validate:"nullable,max=2000"`
//	}
package validate

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		rules := splitRules(tag)
		value := rv.Field(i)

		absent := false
		if value.Kind() == reflect.Ptr {
			absent = value.IsNil()
			if !absent {
				value = value.Elem()
			}
		}

		if hasRule(rules, "nullable") && (absent || isEmpty(value)) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if absent {
				if rule == "required" {
					errs[name] = "This field is required."
				}
				break
			}
			if msg := applyRule(rule, value); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ─── Core dispatcher ──────────────────────────────────────────────────────────

func applyRule(rule string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return "This field is required."
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return "Enter a valid email address."
		}
	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return "Enter a valid URL."
		}
	case "username":
		if !usernameRE.MatchString(raw) {
			return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
		}
	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return "A valid integer is required."
		}

	case "min":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("Ensure this value is greater than or equal to %s.", param)
			}
		} else if float64(length(v, raw)) < n {
			return fmt.Sprintf("Ensure this field has at least %s characters.", param)
		}
	case "max":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("Ensure this value is less than or equal to %s.", param)
			}
		} else if float64(length(v, raw)) > n {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", param)
		}
	case "gt":
		if toFloat(v) <= mustParseFloat(param) {
			return fmt.Sprintf("Ensure this value is greater than %s.", param)
		}
	case "gte":
		if toFloat(v) < mustParseFloat(param) {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", param)
		}
	case "lte":
		if toFloat(v) > mustParseFloat(param) {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", param)
		}
	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		l, h := mustParseFloat(lo), mustParseFloat(hi)
		if isNumericKind(v) {
			if f := toFloat(v); f < l || f > h {
				return fmt.Sprintf("Ensure this value is between %s and %s.", lo, hi)
			}
		} else if n := float64(length(v, raw)); n < l || n > h {
			return fmt.Sprintf("Ensure this field has between %s and %s characters.", lo, hi)
		}
	case "step":
		s := mustParseFloat(param)
		if s > 0 {
			q := toFloat(v) / s
			if math.Abs(q-math.Round(q)) > 1e-9 {
				return fmt.Sprintf("Ensure this value is a multiple of %s.", param)
			}
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("%q is not a valid choice.", raw)
	case "not_in":
		for _, f := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(f) {
				return fmt.Sprintf("%q is not a valid choice.", raw)
			}
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil {
			return "Invalid validation pattern."
		}
		if !re.MatchString(raw) {
			return "Enter a valid value."
		}
	}

	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRE = regexp.MustCompile(`^[\w.@+\-]+$`)
)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a valid boolean value, not empty
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func length(v reflect.Value, raw string) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return len([]rune(raw))
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// multiValue lists rules whose parameter may itself contain commas.
var multiValue = []string{"in=", "not_in=", "between="}

// knownRules is consulted after a comma inside a multi-value parameter to
// decide whether the next token starts a new rule.
var knownRules = []string{
	"required", "nullable", "email", "url", "username", "integer",
	"regex=", "min=", "max=", "gt=", "gte=", "lte=", "step=",
	"in=", "not_in=", "between=",
}

// splitRules splits the validate tag by comma while keeping multi-value
// parameters intact:
// "required,in=admin,user,max=100" → ["required", "in=admin,user", "max=100"]
func splitRules(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch != ',' {
			current.WriteByte(ch)
			if !inParam {
				for _, pfx := range multiValue {
					if current.String() == pfx {
						inParam = true
						break
					}
				}
			}
			continue
		}

		if inParam && !startsRule(tag[i+1:]) {
			current.WriteByte(ch)
			continue
		}
		rules = append(rules, current.String())
		current.Reset()
		inParam = false
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

func startsRule(s string) bool {
	for _, k := range knownRules {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
