package schema

import "strings"

// Kind identifies the variant of a Type.
type Kind string

const (
	KindRecord  Kind = "record"
	KindEnum    Kind = "enum"
	KindUnion   Kind = "union"
	KindArray   Kind = "array"
	KindMap     Kind = "map"
	KindFixed   Kind = "fixed"
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindInt     Kind = "int"
	KindLong    Kind = "long"
	KindFloat   Kind = "float"
	KindDouble  Kind = "double"
	KindBytes   Kind = "bytes"
	KindString  Kind = "string"
)

// Type is a parsed schema. It is one of *Record, *Enum, *Union, *Array,
// *Map, *Fixed or *Primitive.
type Type interface {
	Kind() Kind
	sealed()
}

// Named is a Type that is addressed by its full name.
type Named interface {
	Type
	TypeName() string
}

// Record is an Avro record.
type Record struct {
	FullName  string
	Namespace string
	Name      string
	Doc       string
	Fields    []Field
}

// Field is a single record field. A null default is HasDefault with a nil
// Default.
type Field struct {
	Name       string
	Type       Type
	Doc        string
	HasDefault bool
	Default    any
}

// Enum is an Avro enum.
type Enum struct {
	FullName  string
	Namespace string
	Name      string
	Doc       string
	Symbols   []string
	Default   string
}

// Union is an Avro union.
type Union struct {
	Options []Type
}

// Array is an Avro array.
type Array struct {
	Items Type
}

// Map is an Avro map with string keys.
type Map struct {
	Values Type
}

// Fixed is a named fixed-size byte sequence.
type Fixed struct {
	FullName  string
	Namespace string
	Name      string
	Size      int
}

// Primitive is one of the Avro primitive types, optionally annotated with a
// logical type such as timestamp-millis.
type Primitive struct {
	Of      Kind
	Logical string
}

func (*Record) Kind() Kind      { return KindRecord }
func (*Enum) Kind() Kind        { return KindEnum }
func (*Union) Kind() Kind       { return KindUnion }
func (*Array) Kind() Kind       { return KindArray }
func (*Map) Kind() Kind         { return KindMap }
func (*Fixed) Kind() Kind       { return KindFixed }
func (p *Primitive) Kind() Kind { return p.Of }

func (*Record) sealed()    {}
func (*Enum) sealed()      {}
func (*Union) sealed()     {}
func (*Array) sealed()     {}
func (*Map) sealed()       {}
func (*Fixed) sealed()     {}
func (*Primitive) sealed() {}

func (r *Record) TypeName() string { return r.FullName }
func (e *Enum) TypeName() string   { return e.FullName }
func (f *Fixed) TypeName() string  { return f.FullName }

// SplitName splits a full name into namespace and local name.
func SplitName(fullName string) (namespace, name string) {
	i := strings.LastIndexByte(fullName, '.')
	if i < 0 {
		return "", fullName
	}
	return fullName[:i], fullName[i+1:]
}

// NewRecord returns a record whose namespace and name are derived from
// fullName.
func NewRecord(fullName, doc string, fields ...Field) *Record {
	ns, name := SplitName(fullName)
	return &Record{FullName: fullName, Namespace: ns, Name: name, Doc: doc, Fields: fields}
}

// NewEnum returns an enum whose namespace and name are derived from fullName.
func NewEnum(fullName, doc string, symbols ...string) *Enum {
	ns, name := SplitName(fullName)
	return &Enum{FullName: fullName, Namespace: ns, Name: name, Doc: doc, Symbols: symbols}
}

// Prim returns a primitive type of the given kind.
func Prim(kind Kind) *Primitive {
	return &Primitive{Of: kind}
}

// Field returns the field with the given name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasSymbol reports whether the enum declares symbol.
func (e *Enum) HasSymbol(symbol string) bool {
	for _, s := range e.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Nullable reports whether one of the union options is null.
func (u *Union) Nullable() bool {
	for _, t := range u.Options {
		if t.Kind() == KindNull {
			return true
		}
	}
	return false
}
