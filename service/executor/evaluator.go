package executor

import (
	"reflect"
	"strings"

	"github.com/viant/toolbox"
)

// Expand resolves ${...} references in a step input against the run
// variables (input bag, context fields, prior step outputs). Maps and slices
// are expanded recursively; a string that is exactly one reference yields
// the referenced value itself, preserving its type.
func Expand(value interface{}, variables map[string]interface{}) interface{} {
	switch actual := value.(type) {
	case string:
		return expandText(actual, variables)
	case map[string]interface{}:
		expanded := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			expanded[k] = Expand(v, variables)
		}
		return expanded
	case []interface{}:
		expanded := make([]interface{}, len(actual))
		for i, v := range actual {
			expanded[i] = Expand(v, variables)
		}
		return expanded
	}
	return value
}

// EvalCondition evaluates a step predicate. Supported forms: a ${...}
// truthiness test, optional leading '!', and binary == / != comparison of
// two expanded operands.
func EvalCondition(expr string, variables map[string]interface{}) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}
	negate := false
	for strings.HasPrefix(expr, "!") {
		negate = !negate
		expr = strings.TrimSpace(expr[1:])
	}
	result := evalComparable(expr, variables)
	if negate {
		return !result
	}
	return result
}

func evalComparable(expr string, variables map[string]interface{}) bool {
	for _, op := range []string{"==", "!="} {
		idx := strings.Index(expr, op)
		if idx == -1 {
			continue
		}
		left := Expand(strings.TrimSpace(expr[:idx]), variables)
		right := Expand(strings.TrimSpace(expr[idx+len(op):]), variables)
		equal := toolbox.AsString(left) == toolbox.AsString(right)
		if op == "!=" {
			return !equal
		}
		return equal
	}
	value := Expand(expr, variables)
	if value == nil {
		return false
	}
	return toolbox.AsBoolean(value)
}

// expandText interpolates ${...} references; when the whole text is a single
// reference the resolved value is returned as-is.
func expandText(text string, variables map[string]interface{}) interface{} {
	if !strings.Contains(text, "${") {
		return text
	}
	if strings.HasPrefix(text, "${") && strings.HasSuffix(text, "}") {
		inner := text[2 : len(text)-1]
		if !strings.Contains(inner, "${") {
			return resolvePath(inner, variables)
		}
	}
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(text[i:], "${")
		if idx < 0 {
			b.WriteString(text[i:])
			break
		}
		b.WriteString(text[i : i+idx])
		end := strings.IndexByte(text[i+idx:], '}')
		if end < 0 {
			b.WriteString(text[i+idx:])
			break
		}
		path := text[i+idx+2 : i+idx+end]
		if resolved := resolvePath(path, variables); resolved != nil {
			b.WriteString(toolbox.AsString(resolved))
		}
		i += idx + end + 1
	}
	return b.String()
}

// resolvePath walks a dotted path through maps and exported struct fields.
func resolvePath(path string, variables map[string]interface{}) interface{} {
	var current interface{} = variables
	for _, part := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}
		current = field(current, part)
	}
	return current
}

func field(holder interface{}, name string) interface{} {
	if aMap, ok := holder.(map[string]interface{}); ok {
		if value, ok := aMap[name]; ok {
			return value
		}
		// case-insensitive fallback
		for k, v := range aMap {
			if strings.EqualFold(k, name) {
				return v
			}
		}
		return nil
	}
	value := reflect.ValueOf(holder)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	switch value.Kind() {
	case reflect.Map:
		for _, key := range value.MapKeys() {
			if key.Kind() == reflect.String && strings.EqualFold(key.String(), name) {
				return value.MapIndex(key).Interface()
			}
		}
	case reflect.Struct:
		rType := value.Type()
		for i := 0; i < rType.NumField(); i++ {
			structField := rType.Field(i)
			if !structField.IsExported() {
				continue
			}
			if strings.EqualFold(structField.Name, name) || strings.EqualFold(jsonName(structField), name) {
				return value.Field(i).Interface()
			}
		}
	}
	return nil
}

func jsonName(structField reflect.StructField) string {
	tag := structField.Tag.Get("json")
	if tag == "" {
		return ""
	}
	if idx := strings.IndexByte(tag, ','); idx != -1 {
		tag = tag[:idx]
	}
	return tag
}
