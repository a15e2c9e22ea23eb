package schema

import (
	"encoding/json"
	"strings"
)

// Canonical renders t as compact Avro JSON. Named types are written in full
// on their first occurrence and by full name afterwards, so recursive types
// terminate. Two schemas with the same content have the same canonical text.
func Canonical(t Type) string {
	var b strings.Builder
	writeCanonical(&b, t, make(map[string]bool))
	return b.String()
}

func writeCanonical(b *strings.Builder, t Type, seen map[string]bool) {
	switch v := t.(type) {
	case nil:
		b.WriteString(`"null"`)
	case *Primitive:
		if v.Logical == "" {
			writeString(b, string(v.Of))
			return
		}
		b.WriteString(`{"type":`)
		writeString(b, string(v.Of))
		b.WriteString(`,"logicalType":`)
		writeString(b, v.Logical)
		b.WriteByte('}')
	case *Record:
		if seen[v.FullName] {
			writeString(b, v.FullName)
			return
		}
		seen[v.FullName] = true
		b.WriteString(`{"type":"record","name":`)
		writeString(b, v.FullName)
		if v.Doc != "" {
			b.WriteString(`,"doc":`)
			writeString(b, v.Doc)
		}
		b.WriteString(`,"fields":[`)
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(`{"name":`)
			writeString(b, f.Name)
			b.WriteString(`,"type":`)
			writeCanonical(b, f.Type, seen)
			if f.Doc != "" {
				b.WriteString(`,"doc":`)
				writeString(b, f.Doc)
			}
			if f.HasDefault {
				b.WriteString(`,"default":`)
				raw, err := json.Marshal(f.Default)
				if err != nil {
					raw = []byte("null")
				}
				b.Write(raw)
			}
			b.WriteByte('}')
		}
		b.WriteString("]}")
	case *Enum:
		if seen[v.FullName] {
			writeString(b, v.FullName)
			return
		}
		seen[v.FullName] = true
		b.WriteString(`{"type":"enum","name":`)
		writeString(b, v.FullName)
		if v.Doc != "" {
			b.WriteString(`,"doc":`)
			writeString(b, v.Doc)
		}
		b.WriteString(`,"symbols":[`)
		for i, s := range v.Symbols {
			if i > 0 {
				b.WriteByte(',')
			}
			writeString(b, s)
		}
		b.WriteByte(']')
		if v.Default != "" {
			b.WriteString(`,"default":`)
			writeString(b, v.Default)
		}
		b.WriteByte('}')
	case *Fixed:
		if seen[v.FullName] {
			writeString(b, v.FullName)
			return
		}
		seen[v.FullName] = true
		b.WriteString(`{"type":"fixed","name":`)
		writeString(b, v.FullName)
		b.WriteString(`,"size":`)
		raw, _ := json.Marshal(v.Size)
		b.Write(raw)
		b.WriteByte('}')
	case *Union:
		b.WriteByte('[')
		for i, o := range v.Options {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, o, seen)
		}
		b.WriteByte(']')
	case *Array:
		b.WriteString(`{"type":"array","items":`)
		writeCanonical(b, v.Items, seen)
		b.WriteByte('}')
	case *Map:
		b.WriteString(`{"type":"map","values":`)
		writeCanonical(b, v.Values, seen)
		b.WriteByte('}')
	}
}

func writeString(b *strings.Builder, s string) {
	raw, _ := json.Marshal(s)
	b.Write(raw)
}
