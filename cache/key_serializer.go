package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// KeySeparator is the delimiter used by NewDefaultKeySerializer.
const KeySeparator = "::"

// EntitySeparator joins a database name and an id, e.g. "blog:post:42".
const EntitySeparator = ":"

// KeySerializer builds a cache key from a namespace and arbitrary args.
// Keys must be stable across calls with equal arguments.
type KeySerializer interface {
	SerializeKey(namespace string, args ...any) string
}

type keySerializer struct {
	separator string
}

// NewDefaultKeySerializer joins segments with KeySeparator.
func NewDefaultKeySerializer() KeySerializer {
	return NewKeySerializer(KeySeparator)
}

// NewKeySerializer joins segments with separator.
func NewKeySerializer(separator string) KeySerializer {
	return &keySerializer{separator: separator}
}

func (s *keySerializer) SerializeKey(namespace string, args ...any) string {
	if len(args) == 0 {
		return namespace
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, namespace)
	for _, arg := range args {
		parts = append(parts, s.value(arg))
	}
	return strings.Join(parts, s.separator)
}

func (s *keySerializer) value(v any) string {
	if v == nil {
		return "nil"
	}

	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return "nil"
		}
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return fmt.Sprintf("func:%p", v)
	case reflect.Chan:
		return fmt.Sprintf("chan:%p", v)
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.value(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return fmt.Sprintf("slice[%d]:{%s}", rv.Len(), s.elements(rv))
	case reflect.Array:
		return fmt.Sprintf("array[%d]:{%s}", rv.Len(), s.elements(rv))
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.mapValue(rv)
	case reflect.Struct:
		return s.structValue(rv)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (s *keySerializer) elements(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.value(rv.Index(i).Interface())
	}
	return strings.Join(parts, ",")
}

// mapValue sorts pairs by their serialized key.
func (s *keySerializer) mapValue(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.value(iter.Key().Interface())+"="+s.value(iter.Value().Interface()))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func (s *keySerializer) structValue(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+":"+s.value(rv.Field(i).Interface()))
	}
	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}
