package models

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// wireScene and wireObject are the msgpack shapes of Scene and Object.
// Extra values travel as raw JSON so the binary form is as lossless as the
// text form.
type wireScene struct {
	Version string            `msgpack:"version"`
	Objects []Object          `msgpack:"objects"`
	Extra   map[string][]byte `msgpack:"extra,omitempty"`
}

type wireObject struct {
	Type     Kind               `msgpack:"type"`
	Geometry msgpack.RawMessage `msgpack:"geometry,omitempty"`
	Style    Style              `msgpack:"style"`
	Extra    map[string][]byte  `msgpack:"extra,omitempty"`
	Raw      []byte             `msgpack:"raw,omitempty"`
}

var (
	_ msgpack.CustomEncoder = Scene{}
	_ msgpack.CustomDecoder = (*Scene)(nil)
	_ msgpack.CustomEncoder = Object{}
	_ msgpack.CustomDecoder = (*Object)(nil)
)

func (s Scene) EncodeMsgpack(enc *msgpack.Encoder) error {
	objects := s.Objects
	if objects == nil {
		objects = []Object{}
	}
	return enc.Encode(wireScene{
		Version: s.Version,
		Objects: objects,
		Extra:   toBytesMap(s.Extra),
	})
}

func (s *Scene) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w wireScene
	if err := dec.Decode(&w); err != nil {
		return err
	}
	if w.Objects == nil {
		w.Objects = []Object{}
	}
	*s = Scene{Version: w.Version, Objects: w.Objects, Extra: toRawMap(w.Extra)}
	return nil
}

func (o Object) EncodeMsgpack(enc *msgpack.Encoder) error {
	w := wireObject{
		Style: o.Style,
		Extra: toBytesMap(o.Extra),
	}
	if o.Geometry == nil {
		w.Raw = o.Raw
		return enc.Encode(w)
	}
	geom, err := msgpack.Marshal(o.Geometry)
	if err != nil {
		return fmt.Errorf("encoding %s geometry: %w", o.Geometry.Kind(), err)
	}
	w.Type = o.Geometry.Kind()
	w.Geometry = geom
	return enc.Encode(w)
}

func (o *Object) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w wireObject
	if err := dec.Decode(&w); err != nil {
		return err
	}
	if w.Type == "" {
		*o = Object{Raw: json.RawMessage(w.Raw)}
		return nil
	}

	var (
		geom Geometry
		err  error
	)
	switch w.Type {
	case KindLine:
		var g Line
		err = msgpack.Unmarshal(w.Geometry, &g)
		geom = g
	case KindRect:
		var g Rect
		err = msgpack.Unmarshal(w.Geometry, &g)
		geom = g
	case KindCircle:
		var g Circle
		err = msgpack.Unmarshal(w.Geometry, &g)
		geom = g
	case KindPoint:
		var g Point
		err = msgpack.Unmarshal(w.Geometry, &g)
		geom = g
	case KindPolygon:
		var g Polygon
		err = msgpack.Unmarshal(w.Geometry, &g)
		geom = g
	case KindPath:
		var g Path
		err = msgpack.Unmarshal(w.Geometry, &g)
		geom = g
	default:
		return fmt.Errorf("unknown object type %q", w.Type)
	}
	if err != nil {
		return fmt.Errorf("decoding %s geometry: %w", w.Type, err)
	}
	*o = Object{Geometry: geom, Style: w.Style, Extra: toRawMap(w.Extra)}
	return nil
}

func toBytesMap(m map[string]json.RawMessage) map[string][]byte {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out
}

func toRawMap(m map[string][]byte) map[string]json.RawMessage {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = json.RawMessage(v)
	}
	return out
}
