package replica

import (
	"reflect"

	"github.com/zoobzio/sentinel"
)

// copyTag is the struct tag read for field dispositions.
const copyTag = "copy"

func init() {
	sentinel.Tag(copyTag)
}

// fieldMode is the resolved disposition of one struct field.
type fieldMode uint8

const (
	modeCopy    fieldMode = iota // deep copy through dispatch
	modeSkip                     // leave zero
	modeShallow                  // assign source value as is
)

// fieldPlan describes how to copy a single struct field.
type fieldPlan struct {
	index  int          // reflect.Value.Field index
	name   string       // field name for error paths
	typ    reflect.Type // declared field type
	mode   fieldMode
	hidden bool // unexported, reached through unsafe
}

// typePlan holds the field plans of one struct type.
// Plans are immutable after construction and shared between copies.
type typePlan struct {
	typeName string
	fields   []fieldPlan
	hidden   bool // any non-skipped field is unexported
}

// buildPlan creates the field plan for a struct type by scanning its copy tags.
func buildPlan(rt reflect.Type) (*typePlan, error) {
	meta := scanType(rt)

	tagged := make(map[string]string, len(meta.Fields))
	for _, field := range meta.Fields {
		if val, ok := field.Tags[copyTag]; ok {
			tagged[field.Name] = val
		}
	}

	plan := &typePlan{
		typeName: rt.String(),
		fields:   make([]fieldPlan, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)

		val, ok := tagged[sf.Name]
		if !ok {
			// sentinel metadata only carries exported fields
			val = sf.Tag.Get(copyTag)
		}
		d := Disposition(val)
		if !IsValidDisposition(d) {
			return nil, &TagError{Type: rt, Field: sf.Name, Value: val}
		}

		fp := fieldPlan{index: i, name: sf.Name, typ: sf.Type, hidden: !sf.IsExported()}
		switch {
		case sf.Name == "_", d == DispositionSkip:
			fp.mode = modeSkip
		case d == DispositionShallow:
			fp.mode = modeShallow
		default:
			fp.mode = modeCopy
		}
		if fp.hidden && fp.mode != modeSkip {
			plan.hidden = true
		}
		plan.fields = append(plan.fields, fp)
	}

	return plan, nil
}

// scanType returns sentinel metadata for a struct type, building it from
// reflection when the type was never scanned.
func scanType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		meta.Fields = append(meta.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseCopyTags(sf.Tag),
		})
	}

	return meta
}

// parseCopyTags extracts the copy tag from a struct tag.
func parseCopyTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string, 1)
	if val, ok := tag.Lookup(copyTag); ok {
		tags[copyTag] = val
	}
	return tags
}

// structTypes collects every struct type statically reachable from rt.
// Interface-typed slots are opaque and not followed.
func structTypes(rt reflect.Type, seen map[reflect.Type]bool, out []reflect.Type) []reflect.Type {
	if seen[rt] {
		return out
	}
	seen[rt] = true

	switch rt.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		return structTypes(rt.Elem(), seen, out)
	case reflect.Map:
		out = structTypes(rt.Key(), seen, out)
		return structTypes(rt.Elem(), seen, out)
	case reflect.Struct:
		out = append(out, rt)
		for i := 0; i < rt.NumField(); i++ {
			out = structTypes(rt.Field(i).Type, seen, out)
		}
	}
	return out
}
