package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// MarshalJSON writes {"version", "objects", extras...} with objects in canonical field order.
func (s Scene) MarshalJSON() ([]byte, error) {
	w := newObjectWriter(s.Extra)
	if err := w.field("version", s.Version); err != nil {
		return nil, err
	}
	objects := s.Objects
	if objects == nil {
		objects = []Object{}
	}
	if err := w.field("objects", objects); err != nil {
		return nil, err
	}
	w.extras(s.Extra)
	return w.close(), nil
}

// UnmarshalJSON requires a JSON object with a string "version" and an array
// "objects". Individual objects are never rejected.
func (s *Scene) UnmarshalJSON(data []byte) error {
	if !isJSONObject(data) {
		return errors.New("document is not a JSON object")
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	rawVersion, ok := top["version"]
	if !ok {
		return errors.New("missing field: version")
	}
	var version string
	if isJSONNull(rawVersion) {
		return errors.New("version must be a string")
	}
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return fmt.Errorf("version must be a string: %w", err)
	}

	rawObjects, ok := top["objects"]
	if !ok {
		return errors.New("missing field: objects")
	}
	if !isJSONArray(rawObjects) {
		return errors.New("objects must be an array")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(rawObjects, &elems); err != nil {
		return fmt.Errorf("objects: %w", err)
	}

	objects := make([]Object, 0, len(elems))
	for _, elem := range elems {
		var o Object
		if err := o.UnmarshalJSON(elem); err != nil {
			return err
		}
		objects = append(objects, o)
	}

	delete(top, "version")
	delete(top, "objects")
	extra, err := compactAll(top)
	if err != nil {
		return err
	}

	*s = Scene{Version: version, Objects: objects, Extra: extra}
	return nil
}

// MarshalJSON emits type, geometry, style and then extra keys in sorted order.
// A style key also present in Extra is written from Extra instead.
func (o Object) MarshalJSON() ([]byte, error) {
	if o.Geometry == nil {
		if len(o.Raw) == 0 {
			return []byte("null"), nil
		}
		return o.Raw, nil
	}

	w := newObjectWriter(o.Extra)
	if err := w.field("type", o.Geometry.Kind()); err != nil {
		return nil, err
	}
	for _, f := range o.Geometry.geometryFields() {
		if err := w.field(f.key, f.value); err != nil {
			return nil, err
		}
	}
	for _, f := range o.Style.fields() {
		if err := w.field(f.key, f.value); err != nil {
			return nil, err
		}
	}
	w.extras(o.Extra)
	return w.close(), nil
}

// UnmarshalJSON never fails on content. Entries that are not objects or name
// an unknown kind become opaque, as do known kinds whose geometry keys are
// missing, null or of the wrong type.
func (o *Object) UnmarshalJSON(data []byte) error {
	raw, err := compact(data)
	if err != nil {
		return err
	}
	opaque := Object{Raw: raw}

	if !isJSONObject(raw) {
		*o = opaque
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		*o = opaque
		return nil
	}
	var kind Kind
	if err := json.Unmarshal(fields["type"], &kind); err != nil {
		*o = opaque
		return nil
	}

	geom, geomKeys, err := decodeGeometry(kind, fields)
	if err != nil {
		*o = opaque
		return nil
	}

	delete(fields, "type")
	for _, k := range geomKeys {
		delete(fields, k)
	}
	style := decodeStyle(fields)

	extra, err := compactAll(fields)
	if err != nil {
		return err
	}
	*o = Object{Geometry: geom, Style: style, Extra: extra}
	return nil
}

func decodeGeometry(kind Kind, fields map[string]json.RawMessage) (Geometry, []string, error) {
	var target Geometry
	switch kind {
	case KindLine:
		target = Line{}
	case KindRect:
		target = Rect{}
	case KindCircle:
		target = Circle{}
	case KindPoint:
		target = Point{}
	case KindPolygon:
		target = Polygon{}
	case KindPath:
		target = Path{}
	default:
		return nil, nil, fmt.Errorf("unknown kind %q", kind)
	}

	var keys []string
	sub := make(map[string]json.RawMessage)
	for _, f := range target.geometryFields() {
		v, ok := fields[f.key]
		if !ok || isJSONNull(v) {
			return nil, nil, fmt.Errorf("%s: missing geometry field %s", kind, f.key)
		}
		keys = append(keys, f.key)
		sub[f.key] = v
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case KindLine:
		var g Line
		err = json.Unmarshal(data, &g)
		target = g
	case KindRect:
		var g Rect
		err = json.Unmarshal(data, &g)
		target = g
	case KindCircle:
		var g Circle
		err = json.Unmarshal(data, &g)
		target = g
	case KindPoint:
		var g Point
		err = json.Unmarshal(data, &g)
		target = g
	case KindPolygon:
		var g Polygon
		err = json.Unmarshal(data, &g)
		target = g
	case KindPath:
		var g Path
		err = json.Unmarshal(data, &g)
		target = g
	}
	if err != nil {
		return nil, nil, err
	}
	return target, keys, nil
}

// decodeStyle consumes the style keys it can type from fields. Keys holding
// null or a value of the wrong type stay behind for Extra.
func decodeStyle(fields map[string]json.RawMessage) Style {
	s := DefaultStyle()
	take := func(key string, dst any) {
		v, ok := fields[key]
		if !ok || isJSONNull(v) {
			return
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return
		}
		delete(fields, key)
	}
	take("stroke", &s.Stroke)
	take("strokeWidth", &s.StrokeWidth)
	take("fill", &s.Fill)
	take("selectable", &s.Selectable)
	take("evented", &s.Evented)
	take("excludeFromExport", &s.ExcludeFromExport)
	return s
}

func (s Style) fields() []field {
	fs := []field{{"stroke", s.Stroke}, {"strokeWidth", s.StrokeWidth}}
	if s.Fill != "" {
		fs = append(fs, field{"fill", s.Fill})
	}
	return append(fs,
		field{"selectable", s.Selectable},
		field{"evented", s.Evented},
		field{"excludeFromExport", s.ExcludeFromExport},
	)
}

// MarshalJSON writes the command as a heterogeneous array: ["M", 1, 2].
func (c PathCommand) MarshalJSON() ([]byte, error) {
	elems := make([]any, 0, len(c.Args)+1)
	elems = append(elems, c.Op)
	for _, a := range c.Args {
		elems = append(elems, a)
	}
	return marshalNoEscape(elems)
}

// UnmarshalJSON expects a string opcode followed by numeric arguments.
func (c *PathCommand) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}
	if len(elems) == 0 {
		return errors.New("empty path command")
	}
	var op string
	if err := json.Unmarshal(elems[0], &op); err != nil {
		return fmt.Errorf("path opcode: %w", err)
	}
	args := make([]float64, 0, len(elems)-1)
	for i, e := range elems[1:] {
		var v float64
		if err := json.Unmarshal(e, &v); err != nil {
			return fmt.Errorf("path argument %d: %w", i, err)
		}
		args = append(args, v)
	}
	*c = PathCommand{Op: op, Args: args}
	return nil
}

// objectWriter assembles a JSON object in insertion order.
type objectWriter struct {
	buf      bytes.Buffer
	n        int
	shadowed map[string]json.RawMessage
}

func newObjectWriter(shadowed map[string]json.RawMessage) *objectWriter {
	w := &objectWriter{shadowed: shadowed}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) field(key string, v any) error {
	if _, ok := w.shadowed[key]; ok {
		return nil
	}
	val, err := marshalNoEscape(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	w.raw(key, val)
	return nil
}

func (w *objectWriter) raw(key string, val []byte) {
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	k, _ := marshalNoEscape(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(val)
	w.n++
}

func (w *objectWriter) extras(extra map[string]json.RawMessage) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, extra[k])
	}
}

func (w *objectWriter) close() []byte {
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func compact(data []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}

// compactAll returns nil for an empty map so decoded objects compare equal
// to objects built in code.
func compactAll(fields map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		c, err := compact(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = c
	}
	return out, nil
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isJSONObject(data []byte) bool { return firstByte(data) == '{' }

func isJSONArray(data []byte) bool { return firstByte(data) == '[' }

func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
