package vib3

import (
	"strconv"
	"strings"
)

// NumDefaultVariations is the amount of built-in parameter presets.
const NumDefaultVariations = 30

// variationLevels is the amount of presets per base shape. Fractal and wave
// stop at three levels since their higher levels are visually saturated.
var variationLevels = [numShapes]int{4, 4, 4, 4, 4, 3, 3, 4}

func variationIndex(i int) (shape BaseShape, level int, ok bool) {
	if i < 0 {
		return 0, 0, false
	}
	for s, n := range variationLevels {
		if i < n {
			return BaseShape(s), i, true
		}
		i -= n
	}
	return 0, 0, false
}

// DefaultVariation returns built-in preset i in [0,30). Presets walk the base
// shapes in order with increasing density, morph, chaos and speed per level.
func DefaultVariation(i int) (Params, bool) {
	shape, level, ok := variationIndex(i)
	if !ok {
		return Params{}, false
	}
	g := float32(shape)
	l := float32(level)
	p := DefaultParams()
	p.SetField(FieldGeometry, g)
	p.SetField(FieldGridDensity, 8+g*2+l*1.5)
	p.SetField(FieldMorphFactor, 0.2+l*0.2)
	p.SetField(FieldChaos, l*0.2)
	p.SetField(FieldSpeed, 0.8+l*0.2)
	p.SetField(FieldHue, float32(i)*12.27)
	p.SetField(FieldRotXW, (l-1.5)*0.3)
	p.SetField(FieldRotYW, float32(int(shape)%2)*0.2)
	p.SetField(FieldRotZW, float32((int(shape)+level)%3)*0.15)
	p.SetField(FieldDimension, 3.2+l*0.2)
	return p, true
}

// VariationName returns the display name of built-in preset i, i.e. "TORUS LATTICE 2".
func VariationName(i int) string {
	shape, level, ok := variationIndex(i)
	if !ok {
		if i < 0 {
			return ""
		}
		return "CUSTOM " + strconv.Itoa(i-NumDefaultVariations+1)
	}
	return strings.ToUpper(shape.String()) + " LATTICE " + strconv.Itoa(level+1)
}
