package models

import "encoding/json"

// DefaultSceneVersion is the format version written into freshly built scenes.
const DefaultSceneVersion = "4.6.0"

// Kind identifies the variant of a drawable object.
type Kind string

const (
	KindLine    Kind = "line"
	KindRect    Kind = "rect"
	KindCircle  Kind = "circle"
	KindPolygon Kind = "polygon"
	KindPoint   Kind = "point"
	KindPath    Kind = "path"
)

// KnownKinds lists every kind with a typed geometry.
var KnownKinds = []Kind{KindLine, KindRect, KindCircle, KindPolygon, KindPoint, KindPath}

// Scene is an ordered sequence of drawable objects plus a format version tag.
// Draw order is sequence order: later objects render on top.
type Scene struct {
	Version string
	Objects []Object
	// Extra holds top-level document keys other than version and objects.
	Extra map[string]json.RawMessage
}

// NewScene returns an empty scene with a non-nil object list.
func NewScene(version string) Scene {
	return Scene{Version: version, Objects: []Object{}}
}

// IsEmpty reports whether the scene has no objects.
func (s Scene) IsEmpty() bool {
	return len(s.Objects) == 0
}

// Geometry is the kind-specific part of a drawable object.
// It is implemented by Line, Rect, Circle, Polygon, Point and Path.
type Geometry interface {
	Kind() Kind
	geometryFields() []field
}

type field struct {
	key   string
	value any
}

// Vertex is a polygon corner.
type Vertex struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Line is a straight segment between two endpoints.
type Line struct {
	X1 float64 `json:"x1" msgpack:"x1"`
	Y1 float64 `json:"y1" msgpack:"y1"`
	X2 float64 `json:"x2" msgpack:"x2"`
	Y2 float64 `json:"y2" msgpack:"y2"`
}

func (Line) Kind() Kind { return KindLine }

func (g Line) geometryFields() []field {
	return []field{{"x1", g.X1}, {"y1", g.Y1}, {"x2", g.X2}, {"y2", g.Y2}}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Left   float64 `json:"left" msgpack:"left"`
	Top    float64 `json:"top" msgpack:"top"`
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

func (Rect) Kind() Kind { return KindRect }

func (g Rect) geometryFields() []field {
	return []field{{"left", g.Left}, {"top", g.Top}, {"width", g.Width}, {"height", g.Height}}
}

// Circle is anchored at the top-left corner of its bounding box.
type Circle struct {
	Left   float64 `json:"left" msgpack:"left"`
	Top    float64 `json:"top" msgpack:"top"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

func (Circle) Kind() Kind { return KindCircle }

func (g Circle) geometryFields() []field {
	return []field{{"left", g.Left}, {"top", g.Top}, {"radius", g.Radius}}
}

// Point is a dot; Radius is derived from the stroke width by the surface.
type Point struct {
	Left   float64 `json:"left" msgpack:"left"`
	Top    float64 `json:"top" msgpack:"top"`
	Radius float64 `json:"radius" msgpack:"radius"`
}

func (Point) Kind() Kind { return KindPoint }

func (g Point) geometryFields() []field {
	return []field{{"left", g.Left}, {"top", g.Top}, {"radius", g.Radius}}
}

// Polygon is a closed shape through its points.
type Polygon struct {
	Points []Vertex `json:"points" msgpack:"points"`
}

func (Polygon) Kind() Kind { return KindPolygon }

func (g Polygon) geometryFields() []field {
	points := g.Points
	if points == nil {
		points = []Vertex{}
	}
	return []field{{"points", points}}
}

// Path is a freehand stroke expressed as SVG-style commands.
type Path struct {
	Path []PathCommand `json:"path" msgpack:"path"`
}

func (Path) Kind() Kind { return KindPath }

func (g Path) geometryFields() []field {
	cmds := g.Path
	if cmds == nil {
		cmds = []PathCommand{}
	}
	return []field{{"path", cmds}}
}

// PathCommand is one path instruction such as ["M", 10, 20] or ["Q", 1, 2, 3, 4].
type PathCommand struct {
	Op   string    `msgpack:"op"`
	Args []float64 `msgpack:"args"`
}

// Style holds the fields shared by every drawable object.
type Style struct {
	Stroke            string  `json:"stroke" msgpack:"stroke"`
	StrokeWidth       float64 `json:"strokeWidth" msgpack:"strokeWidth"`
	Fill              string  `json:"fill,omitempty" msgpack:"fill,omitempty"`
	Selectable        bool    `json:"selectable" msgpack:"selectable"`
	Evented           bool    `json:"evented" msgpack:"evented"`
	ExcludeFromExport bool    `json:"excludeFromExport" msgpack:"excludeFromExport"`
}

// DefaultStyle is what a decoded object gets for fields its document omits.
func DefaultStyle() Style {
	return Style{Selectable: true, Evented: true}
}

// Object is a drawable object: a tagged union over Geometry with a shared
// Style. An object whose Geometry is nil is an opaque passthrough: Raw holds
// its verbatim (compacted) JSON and is re-emitted unchanged.
type Object struct {
	Geometry Geometry
	Style    Style
	// Extra holds keys the kind does not model, as compacted raw JSON.
	Extra map[string]json.RawMessage
	Raw   json.RawMessage
}

// Kind returns the object's kind, or the declared type of an opaque object
// when it has one.
func (o Object) Kind() Kind {
	if o.Geometry != nil {
		return o.Geometry.Kind()
	}
	var peek struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(o.Raw, &peek); err != nil {
		return ""
	}
	return peek.Type
}

// IsOpaque reports whether the object is carried through without a typed geometry.
func (o Object) IsOpaque() bool {
	return o.Geometry == nil
}

// ExcludedFromExport reports whether the object is visual scaffolding.
// Opaque objects are inspected for the flag in their raw JSON.
func (o Object) ExcludedFromExport() bool {
	if o.Geometry != nil {
		return o.Style.ExcludeFromExport
	}
	var peek struct {
		ExcludeFromExport bool `json:"excludeFromExport"`
	}
	if err := json.Unmarshal(o.Raw, &peek); err != nil {
		return false
	}
	return peek.ExcludeFromExport
}
