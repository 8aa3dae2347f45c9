package vib3

import (
	"github.com/chewxy/math32"
)

// Field identifies a named parameter of [Params].
type Field uint8

const (
	FieldGeometry Field = iota
	FieldGridDensity
	FieldMorphFactor
	FieldChaos
	FieldSpeed
	FieldHue
	FieldIntensity
	FieldSaturation
	FieldDimension
	FieldRotXY
	FieldRotXZ
	FieldRotYZ
	FieldRotXW
	FieldRotYW
	FieldRotZW
	FieldMouseX
	FieldMouseY
	FieldMouseIntensity
	FieldClickIntensity
	numFields
)

// NumFields is the amount of named parameters.
const NumFields = int(numFields)

type fieldMode uint8

const (
	modeClamp fieldMode = iota
	modeRound           // clamp then round to nearest integer.
	modeWrap            // modulo the range.
	modeAngle           // sign preserving modulo 2π.
)

type fieldDef struct {
	name    string
	aliases []string
	def     float32
	min     float32
	max     float32
	mode    fieldMode
}

var fieldDefs = [numFields]fieldDef{
	FieldGeometry:       {name: "geometry", aliases: []string{"geometryIndex", "geometryType"}, def: 0, min: 0, max: float32(NumGeometries - 1), mode: modeRound},
	FieldGridDensity:    {name: "gridDensity", aliases: []string{"density"}, def: 15, min: 5, max: 100},
	FieldMorphFactor:    {name: "morphFactor", aliases: []string{"morph"}, def: 1, min: 0, max: 2},
	FieldChaos:          {name: "chaos", def: 0.2, min: 0, max: 1},
	FieldSpeed:          {name: "speed", def: 1, min: 0.1, max: 3},
	FieldHue:            {name: "hue", def: 200, min: 0, max: 360, mode: modeWrap},
	FieldIntensity:      {name: "intensity", def: 0.5, min: 0, max: 1},
	FieldSaturation:     {name: "saturation", def: 0.8, min: 0, max: 1},
	FieldDimension:      {name: "dimension", def: 3.5, min: 3, max: 4},
	FieldRotXY:          {name: "rot4dXY", aliases: []string{"rotXY"}, min: -tau, max: tau, mode: modeAngle},
	FieldRotXZ:          {name: "rot4dXZ", aliases: []string{"rotXZ"}, min: -tau, max: tau, mode: modeAngle},
	FieldRotYZ:          {name: "rot4dYZ", aliases: []string{"rotYZ"}, min: -tau, max: tau, mode: modeAngle},
	FieldRotXW:          {name: "rot4dXW", aliases: []string{"rotXW"}, min: -tau, max: tau, mode: modeAngle},
	FieldRotYW:          {name: "rot4dYW", aliases: []string{"rotYW"}, min: -tau, max: tau, mode: modeAngle},
	FieldRotZW:          {name: "rot4dZW", aliases: []string{"rotZW"}, min: -tau, max: tau, mode: modeAngle},
	FieldMouseX:         {name: "mouseX", def: 0.5, min: 0, max: 1},
	FieldMouseY:         {name: "mouseY", def: 0.5, min: 0, max: 1},
	FieldMouseIntensity: {name: "mouseIntensity", def: 0, min: 0, max: 1},
	FieldClickIntensity: {name: "clickIntensity", def: 0, min: 0, max: 1},
}

var fieldByName = func() map[string]Field {
	m := make(map[string]Field, 2*NumFields)
	for f := Field(0); f < numFields; f++ {
		fd := &fieldDefs[f]
		m[fd.name] = f
		for _, alias := range fd.aliases {
			m[alias] = f
		}
	}
	return m
}()

// LookupField returns the field for a canonical parameter name or one of its aliases.
func LookupField(name string) (Field, bool) {
	f, ok := fieldByName[name]
	return f, ok
}

// String returns the canonical parameter name of the field.
func (f Field) String() string {
	if f >= numFields {
		return "Field(invalid)"
	}
	return fieldDefs[f].name
}

// Range returns the documented valid range of the field. Wrapped fields
// (hue and rotation angles) exclude the upper bound. Invalid fields return zeros.
func (f Field) Range() (min, max float32) {
	if f >= numFields {
		return 0, 0
	}
	fd := &fieldDefs[f]
	return fd.min, fd.max
}

// Default returns the field's default value, or zero for an invalid field.
func (f Field) Default() float32 {
	if f >= numFields {
		return 0
	}
	return fieldDefs[f].def
}

// Clamp brings v into the field's range. Clamping an already clamped value
// returns it unchanged. NaN is returned as is and must be rejected by the caller.
// Invalid fields return v unchanged.
func (f Field) Clamp(v float32) float32 {
	if f >= numFields {
		return v
	}
	fd := &fieldDefs[f]
	switch fd.mode {
	case modeRound:
		return math32.Floor(clampf(v, fd.min, fd.max) + 0.5)
	case modeWrap:
		if math32.IsInf(v, 0) {
			return fd.min
		}
		span := fd.max - fd.min
		v = fd.min + modf(v-fd.min, span)
		if v < fd.min || v >= fd.max {
			v = fd.min // Float rounding of tiny negative or huge inputs.
		}
		return v
	case modeAngle:
		if math32.IsInf(v, 0) {
			return 0
		}
		if v > -fd.max && v < fd.max {
			return v
		}
		return math32.Mod(v, fd.max)
	default:
		return clampf(v, fd.min, fd.max)
	}
}

// Params is the named-parameter set shared by all layers of a system.
// The zero value is not valid, use [DefaultParams].
type Params struct {
	values [numFields]float32
}

// DefaultParams returns a parameter set with every field at its default.
func DefaultParams() Params {
	var p Params
	for f := Field(0); f < numFields; f++ {
		p.values[f] = fieldDefs[f].def
	}
	return p
}

// clamped returns p with every field brought into range. NaN fields take their default.
func (p Params) clamped() Params {
	for f := Field(0); f < numFields; f++ {
		v := p.values[f]
		if math32.IsNaN(v) {
			v = fieldDefs[f].def
		}
		p.values[f] = f.Clamp(v)
	}
	return p
}

// Get returns the value of field f, or zero for an invalid field.
func (p Params) Get(f Field) float32 {
	if f >= numFields {
		return 0
	}
	return p.values[f]
}

// SetField stores v clamped to the field's range. NaN writes are ignored.
func (p *Params) SetField(f Field, v float32) {
	if f >= numFields || math32.IsNaN(v) {
		return
	}
	p.values[f] = f.Clamp(v)
}

// Set stores a value by parameter name. Unknown names are ignored and
// reported by returning false. Out of range values are clamped, never rejected.
func (p *Params) Set(name string, v float32) bool {
	f, ok := LookupField(name)
	if !ok {
		return false
	}
	p.SetField(f, v)
	return true
}

// Lookup returns the value of a parameter by name.
func (p Params) Lookup(name string) (float32, bool) {
	f, ok := LookupField(name)
	if !ok {
		return 0, false
	}
	return p.values[f], true
}

// Geometry returns the decoded geometry index.
func (p Params) Geometry() (CoreType, BaseShape) {
	return DecodeGeometry(p.values[FieldGeometry])
}

// Rotation returns the six user set rotation angles in canonical plane order.
func (p Params) Rotation() Angles {
	var a Angles
	copy(a[:], p.values[FieldRotXY:FieldRotZW+1])
	return a
}

// Map returns all fields keyed by canonical name.
func (p Params) Map() map[string]float32 {
	m := make(map[string]float32, NumFields)
	for f := Field(0); f < numFields; f++ {
		m[fieldDefs[f].name] = p.values[f]
	}
	return m
}

// decayInteraction applies one frame of transient pointer and pulse decay.
func (p *Params) decayInteraction() {
	const snap = 1e-4
	decay := func(f Field, k float32) {
		v := p.values[f] * k
		if v < snap {
			v = 0
		}
		p.values[f] = v
	}
	decay(FieldMouseIntensity, MouseDecay)
	decay(FieldClickIntensity, ClickDecay)
}

// Per frame decay factors of the transient interaction fields.
const (
	MouseDecay = 0.95
	ClickDecay = 0.92
)
