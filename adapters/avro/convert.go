package avro

import (
	"github.com/hamba/avro/v2"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// convert maps a hamba schema onto the domain model. Named types are
// converted once, so shared and recursive references keep their identity.
func convert(s avro.Schema) schema.Type {
	c := converter{named: make(map[string]schema.Named)}
	return c.convert(s)
}

type converter struct {
	named map[string]schema.Named
}

func (c *converter) convert(s avro.Schema) schema.Type {
	switch v := s.(type) {
	case *avro.RefSchema:
		return c.convert(v.Schema())

	case *avro.RecordSchema:
		if t, ok := c.named[v.FullName()]; ok {
			return t
		}
		rec := &schema.Record{
			FullName:  v.FullName(),
			Namespace: v.Namespace(),
			Name:      v.Name(),
			Doc:       v.Doc(),
		}
		c.named[rec.FullName] = rec
		for _, f := range v.Fields() {
			rec.Fields = append(rec.Fields, schema.Field{
				Name:       f.Name(),
				Type:       c.convert(f.Type()),
				Doc:        f.Doc(),
				HasDefault: f.HasDefault(),
				Default:    f.Default(),
			})
		}
		return rec

	case *avro.EnumSchema:
		if t, ok := c.named[v.FullName()]; ok {
			return t
		}
		enum := &schema.Enum{
			FullName:  v.FullName(),
			Namespace: v.Namespace(),
			Name:      v.Name(),
			Doc:       v.Doc(),
			Symbols:   append([]string(nil), v.Symbols()...),
			Default:   v.Default(),
		}
		c.named[enum.FullName] = enum
		return enum

	case *avro.FixedSchema:
		if t, ok := c.named[v.FullName()]; ok {
			return t
		}
		fixed := &schema.Fixed{
			FullName:  v.FullName(),
			Namespace: v.Namespace(),
			Name:      v.Name(),
			Size:      v.Size(),
		}
		c.named[fixed.FullName] = fixed
		return fixed

	case *avro.UnionSchema:
		u := &schema.Union{}
		for _, t := range v.Types() {
			u.Options = append(u.Options, c.convert(t))
		}
		return u

	case *avro.ArraySchema:
		return &schema.Array{Items: c.convert(v.Items())}

	case *avro.MapSchema:
		return &schema.Map{Values: c.convert(v.Values())}

	case *avro.NullSchema:
		return schema.Prim(schema.KindNull)

	case *avro.PrimitiveSchema:
		p := schema.Prim(schema.Kind(v.Type()))
		if l := v.Logical(); l != nil {
			p.Logical = string(l.Type())
		}
		return p
	}
	return schema.Prim(schema.Kind(s.Type()))
}
