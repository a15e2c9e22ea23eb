package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// Connect schema types and names used by the Kafka Connect Avro converter.
const (
	connectStruct  = "STRUCT"
	connectArray   = "ARRAY"
	connectMap     = "MAP"
	connectString  = "STRING"
	connectBytes   = "BYTES"
	connectBoolean = "BOOLEAN"
	connectInt32   = "INT32"
	connectInt64   = "INT64"
	connectFloat32 = "FLOAT32"
	connectFloat64 = "FLOAT64"

	connectUnionName = "io.confluent.connect.avro.Union"
	connectEnumParam = "io.confluent.connect.avro.Enum"
	connectFixedSize = "connect.fixed.size"
	connectEnumDoc   = "io.confluent.connect.avro.enum.doc."
	connectEnumDef   = "io.confluent.connect.avro.enum.default."
)

var connectLogical = map[string]struct {
	name string
	kind schema.Kind
}{
	"timestamp-millis": {"org.apache.kafka.connect.data.Timestamp", schema.KindLong},
	"time-millis":      {"org.apache.kafka.connect.data.Time", schema.KindInt},
	"date":             {"org.apache.kafka.connect.data.Date", schema.KindInt},
	"decimal":          {"org.apache.kafka.connect.data.Decimal", schema.KindBytes},
}

var errRecursive = errors.New("recursive schemas cannot be represented as Kafka Connect schemas")

type connectParam struct {
	Key, Value string
}

// connectSchema mirrors the Kafka Connect schema model: optional types
// instead of nullable unions, structs for records and general unions, and
// parameters for Avro details without a Connect equivalent.
type connectSchema struct {
	Type       string
	Name       string
	Doc        string
	Optional   bool
	Fields     []connectField
	Key, Value *connectSchema
	Params     []connectParam
}

type connectField struct {
	Name       string
	Doc        string
	Schema     *connectSchema
	HasDefault bool
	Default    any
}

func (s *connectSchema) param(key string) (string, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// RoundTrip converts a record to its Kafka Connect representation and back
// and raises when the result differs from the original.
func RoundTrip() validation.Validator[schema.Named] {
	return func(c *validation.Context, t schema.Named) {
		back, err := roundTrip(t)
		if err != nil {
			c.Raise("Failed to convert schema back to itself", err)
			return
		}
		if diff := cmp.Diff(schema.Type(t), back); diff != "" {
			c.Raise("Failed to convert schema back to itself", fmt.Errorf("schema %s changed (-original +converted):\n%s", t.TypeName(), diff))
		}
	}
}

func roundTrip(t schema.Type) (schema.Type, error) {
	enc := encoder{open: make(map[schema.Named]bool)}
	cs, err := enc.toConnect(t)
	if err != nil {
		return nil, err
	}
	return fromConnect(cs)
}

type encoder struct {
	open map[schema.Named]bool
}

func (e *encoder) toConnect(t schema.Type) (*connectSchema, error) {
	if named, ok := t.(schema.Named); ok {
		if e.open[named] {
			return nil, fmt.Errorf("%s: %w", named.TypeName(), errRecursive)
		}
		e.open[named] = true
		defer delete(e.open, named)
	}

	switch v := t.(type) {
	case *schema.Record:
		s := &connectSchema{Type: connectStruct, Name: v.FullName, Doc: v.Doc}
		for _, f := range v.Fields {
			fs, err := e.toConnect(f.Type)
			if err != nil {
				return nil, err
			}
			s.Fields = append(s.Fields, connectField{
				Name:       f.Name,
				Doc:        f.Doc,
				Schema:     fs,
				HasDefault: f.HasDefault,
				Default:    f.Default,
			})
		}
		return s, nil

	case *schema.Enum:
		s := &connectSchema{Type: connectString, Name: v.FullName}
		s.Params = append(s.Params, connectParam{connectEnumParam, v.FullName})
		for _, sym := range v.Symbols {
			s.Params = append(s.Params, connectParam{connectEnumParam + "." + sym, sym})
		}
		if v.Doc != "" {
			s.Params = append(s.Params, connectParam{connectEnumDoc + v.Name, v.Doc})
		}
		if v.Default != "" {
			s.Params = append(s.Params, connectParam{connectEnumDef + v.Name, v.Default})
		}
		return s, nil

	case *schema.Fixed:
		return &connectSchema{
			Type:   connectBytes,
			Name:   v.FullName,
			Params: []connectParam{{connectFixedSize, strconv.Itoa(v.Size)}},
		}, nil

	case *schema.Union:
		var options []schema.Type
		optional := false
		for _, o := range v.Options {
			if o.Kind() == schema.KindNull {
				optional = true
				continue
			}
			options = append(options, o)
		}
		if len(options) == 1 {
			s, err := e.toConnect(options[0])
			if err != nil {
				return nil, err
			}
			s.Optional = optional
			return s, nil
		}
		s := &connectSchema{Type: connectStruct, Name: connectUnionName, Optional: optional}
		for _, o := range options {
			branch, err := e.toConnect(o)
			if err != nil {
				return nil, err
			}
			branch.Optional = true
			s.Fields = append(s.Fields, connectField{Name: branchName(o), Schema: branch})
		}
		return s, nil

	case *schema.Array:
		items, err := e.toConnect(v.Items)
		if err != nil {
			return nil, err
		}
		return &connectSchema{Type: connectArray, Value: items}, nil

	case *schema.Map:
		values, err := e.toConnect(v.Values)
		if err != nil {
			return nil, err
		}
		return &connectSchema{Type: connectMap, Key: &connectSchema{Type: connectString}, Value: values}, nil

	case *schema.Primitive:
		s := &connectSchema{}
		switch v.Of {
		case schema.KindNull:
			return nil, errors.New("null type is not supported outside a union")
		case schema.KindBoolean:
			s.Type = connectBoolean
		case schema.KindInt:
			s.Type = connectInt32
		case schema.KindLong:
			s.Type = connectInt64
		case schema.KindFloat:
			s.Type = connectFloat32
		case schema.KindDouble:
			s.Type = connectFloat64
		case schema.KindBytes:
			s.Type = connectBytes
		case schema.KindString:
			s.Type = connectString
		default:
			return nil, fmt.Errorf("unsupported type %s", v.Of)
		}
		if l, ok := connectLogical[v.Logical]; ok && l.kind == v.Of {
			s.Name = l.name
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported type %T", t)
}

func branchName(t schema.Type) string {
	if named, ok := t.(schema.Named); ok {
		return named.TypeName()
	}
	return string(t.Kind())
}

func fromConnect(s *connectSchema) (schema.Type, error) {
	t, err := fromConnectRequired(s)
	if err != nil {
		return nil, err
	}
	if !s.Optional {
		return t, nil
	}
	if u, ok := t.(*schema.Union); ok {
		u.Options = append([]schema.Type{schema.Prim(schema.KindNull)}, u.Options...)
		return u, nil
	}
	return &schema.Union{Options: []schema.Type{schema.Prim(schema.KindNull), t}}, nil
}

func fromConnectRequired(s *connectSchema) (schema.Type, error) {
	switch s.Type {
	case connectStruct:
		if s.Name == connectUnionName {
			u := &schema.Union{}
			for _, f := range s.Fields {
				o, err := fromConnectRequired(f.Schema)
				if err != nil {
					return nil, err
				}
				u.Options = append(u.Options, o)
			}
			return u, nil
		}
		rec := schema.NewRecord(s.Name, s.Doc)
		for _, f := range s.Fields {
			ft, err := fromConnect(f.Schema)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			rec.Fields = append(rec.Fields, schema.Field{
				Name:       f.Name,
				Type:       ft,
				Doc:        f.Doc,
				HasDefault: f.HasDefault,
				Default:    f.Default,
			})
		}
		return rec, nil

	case connectArray:
		items, err := fromConnect(s.Value)
		if err != nil {
			return nil, err
		}
		return &schema.Array{Items: items}, nil

	case connectMap:
		values, err := fromConnect(s.Value)
		if err != nil {
			return nil, err
		}
		return &schema.Map{Values: values}, nil

	case connectString:
		if name, ok := s.param(connectEnumParam); ok {
			enum := schema.NewEnum(name, "")
			prefix := connectEnumParam + "."
			for _, p := range s.Params {
				if strings.HasPrefix(p.Key, prefix) {
					enum.Symbols = append(enum.Symbols, p.Value)
				}
			}
			enum.Doc, _ = s.param(connectEnumDoc + enum.Name)
			enum.Default, _ = s.param(connectEnumDef + enum.Name)
			return enum, nil
		}
		return primitive(schema.KindString, s.Name), nil

	case connectBytes:
		if size, ok := s.param(connectFixedSize); ok {
			n, err := strconv.Atoi(size)
			if err != nil {
				return nil, fmt.Errorf("fixed size %q: %w", size, err)
			}
			ns, name := schema.SplitName(s.Name)
			return &schema.Fixed{FullName: s.Name, Namespace: ns, Name: name, Size: n}, nil
		}
		return primitive(schema.KindBytes, s.Name), nil
	case connectBoolean:
		return primitive(schema.KindBoolean, s.Name), nil
	case connectInt32:
		return primitive(schema.KindInt, s.Name), nil
	case connectInt64:
		return primitive(schema.KindLong, s.Name), nil
	case connectFloat32:
		return primitive(schema.KindFloat, s.Name), nil
	case connectFloat64:
		return primitive(schema.KindDouble, s.Name), nil
	}
	return nil, fmt.Errorf("unsupported connect type %s", s.Type)
}

func primitive(kind schema.Kind, name string) *schema.Primitive {
	p := schema.Prim(kind)
	for logical, l := range connectLogical {
		if l.name == name && name != "" {
			p.Logical = logical
		}
	}
	return p
}
