package rescache

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/zjrosen/conddispatch/internal/dispatch"
)

// Fingerprint summarizes the shape of a call's arguments.
type Fingerprint string

// FingerprintFunc derives a Fingerprint from call arguments. It must be
// deterministic for the lifetime of the process.
type FingerprintFunc func(args dispatch.Args) Fingerprint

// KindFingerprint encodes the positional argument count and the kind of each
// positional argument in order, followed by the sorted keyword names and the
// kind of each keyword value. Values themselves never contribute.
//
//	p2(main.Circle,float64)k(unit=string)
func KindFingerprint(args dispatch.Args) Fingerprint {
	var sb strings.Builder
	sb.WriteByte('p')
	sb.WriteString(strconv.Itoa(len(args.Positional)))
	sb.WriteByte('(')
	for i, v := range args.Positional {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeKind(&sb, v)
	}
	sb.WriteString(")k(")
	for i, name := range args.KeywordNames() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(name))
		sb.WriteByte('=')
		writeKind(&sb, args.Keyword[name])
	}
	sb.WriteByte(')')
	return Fingerprint(sb.String())
}

func writeKind(sb *strings.Builder, v any) {
	if v == nil {
		sb.WriteString("nil")
		return
	}
	sb.WriteString(typeName(reflect.TypeOf(v)))
}

// typeName is like reflect.Type.String but qualifies named types with their
// full package path, so same-named types from different packages differ.
// Unnamed composites are spelled out recursively for the same reason.
func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return qualified(t.PkgPath(), t.Name())
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + typeName(t.Elem())
	case reflect.Slice:
		return "[]" + typeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + typeName(t.Elem())
	case reflect.Map:
		return "map[" + typeName(t.Key()) + "]" + typeName(t.Elem())
	case reflect.Chan:
		return t.ChanDir().String() + " " + typeName(t.Elem())
	case reflect.Struct:
		return structName(t)
	case reflect.Func:
		return "func" + signature(t)
	case reflect.Interface:
		return interfaceName(t)
	default:
		return t.String()
	}
}

// qualified prefixes name with pkgPath when it has one. Unexported fields
// and methods carry their package path too.
func qualified(pkgPath, name string) string {
	if pkgPath == "" {
		return name
	}
	return pkgPath + "." + name
}

func structName(t reflect.Type) string {
	var sb strings.Builder
	sb.WriteString("struct{")
	for i := range t.NumField() {
		f := t.Field(i)
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(qualified(f.PkgPath, f.Name))
		if f.Anonymous {
			sb.WriteString(" embedded")
		}
		sb.WriteByte(' ')
		sb.WriteString(typeName(f.Type))
		if f.Tag != "" {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Quote(string(f.Tag)))
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// signature renders the parameter and result lists of func type t.
func signature(t reflect.Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range t.NumIn() {
		if i > 0 {
			sb.WriteString(", ")
		}
		if t.IsVariadic() && i == t.NumIn()-1 {
			sb.WriteString("..." + typeName(t.In(i).Elem()))
			continue
		}
		sb.WriteString(typeName(t.In(i)))
	}
	sb.WriteString(") (")
	for i := range t.NumOut() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(typeName(t.Out(i)))
	}
	sb.WriteByte(')')
	return sb.String()
}

func interfaceName(t reflect.Type) string {
	var sb strings.Builder
	sb.WriteString("interface{")
	for i := range t.NumMethod() {
		m := t.Method(i)
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(qualified(m.PkgPath, m.Name))
		sb.WriteString(signature(m.Type))
	}
	sb.WriteByte('}')
	return sb.String()
}
