package vib3

// Uniform names shared by the GLSL programmer and software backends.
const (
	UniformResolution     = "u_resolution"
	UniformTime           = "u_time"
	UniformMouse          = "u_mouse"
	UniformGeometry       = "u_geometry"
	UniformCoreType       = "u_coreType"
	UniformBaseShape      = "u_baseShape"
	UniformGridDensity    = "u_gridDensity"
	UniformMorphFactor    = "u_morphFactor"
	UniformChaos          = "u_chaos"
	UniformSpeed          = "u_speed"
	UniformHue            = "u_hue"
	UniformIntensity      = "u_intensity"
	UniformSaturation     = "u_saturation"
	UniformDimension      = "u_dimension"
	UniformRotation       = "u_rotation"
	UniformMouseIntensity = "u_mouseIntensity"
	UniformClickIntensity = "u_clickIntensity"
	UniformRoleIntensity  = "u_roleIntensity"
	UniformLayerScale     = "u_layerScale"
	UniformLayerOpacity   = "u_layerOpacity"
	UniformLayerTint      = "u_layerTint"
	UniformLayerBlur      = "u_layerBlur"
)

// UniformDecl is a uniform's name and GLSL type.
type UniformDecl struct {
	Name string
	Type string
}

// Size returns the amount of float components of the uniform's type.
func (d UniformDecl) Size() int {
	switch d.Type {
	case "vec2":
		return 2
	case "vec3":
		return 3
	case "vec4":
		return 4
	case "mat4":
		return 16
	}
	return 1
}

var uniformDecls = []UniformDecl{
	{UniformResolution, "vec2"},
	{UniformTime, "float"},
	{UniformMouse, "vec2"},
	{UniformGeometry, "float"},
	{UniformCoreType, "float"},
	{UniformBaseShape, "float"},
	{UniformGridDensity, "float"},
	{UniformMorphFactor, "float"},
	{UniformChaos, "float"},
	{UniformSpeed, "float"},
	{UniformHue, "float"},
	{UniformIntensity, "float"},
	{UniformSaturation, "float"},
	{UniformDimension, "float"},
	{UniformRotation, "mat4"},
	{UniformMouseIntensity, "float"},
	{UniformClickIntensity, "float"},
	{UniformRoleIntensity, "float"},
	{UniformLayerScale, "float"},
	{UniformLayerOpacity, "float"},
	{UniformLayerTint, "vec3"},
	{UniformLayerBlur, "float"},
}

// UniformDecls returns the declarations of every uniform a visualizer program uses.
func UniformDecls() []UniformDecl {
	return append([]UniformDecl(nil), uniformDecls...)
}

// Uniforms is the complete uniform set pushed to a program each frame.
// It is comparable so that frames can be checked for equality.
type Uniforms struct {
	Resolution     [2]float32
	Time           float32
	Mouse          [2]float32
	Geometry       float32
	CoreType       CoreType
	BaseShape      BaseShape
	GridDensity    float32
	MorphFactor    float32
	Chaos          float32
	Speed          float32
	Hue            float32
	Intensity      float32
	Saturation     float32
	Dimension      float32
	Rotation       Mat4
	MouseIntensity float32
	ClickIntensity float32
	RoleIntensity  float32
	LayerScale     float32
	LayerOpacity   float32
	LayerTint      [3]float32
	LayerBlur      float32
}

// DeriveUniforms computes the uniform set of one layer for one frame. The
// rotation is composed from the user angles biased by the library drift, and
// the geometry index is decoded into core type and base shape.
func DeriveUniforms(snap *Snapshot, lib ShapeLibrary, cfg LayerConfig, width, height int, timeMs float32) Uniforms {
	p := snap.Effective()
	speed := p.Get(FieldSpeed)
	var drift Angles
	if lib != nil {
		drift = lib.Drift()
	}
	core, base := p.Geometry()
	return Uniforms{
		Resolution:     [2]float32{float32(width), float32(height)},
		Time:           timeMs,
		Mouse:          [2]float32{p.Get(FieldMouseX), p.Get(FieldMouseY)},
		Geometry:       p.Get(FieldGeometry),
		CoreType:       core,
		BaseShape:      base,
		GridDensity:    p.Get(FieldGridDensity),
		MorphFactor:    p.Get(FieldMorphFactor),
		Chaos:          p.Get(FieldChaos),
		Speed:          speed,
		Hue:            p.Get(FieldHue),
		Intensity:      p.Get(FieldIntensity),
		Saturation:     p.Get(FieldSaturation),
		Dimension:      p.Get(FieldDimension),
		Rotation:       ComposeRotation(DriftAngles(p.Rotation(), drift, timeMs, speed)),
		MouseIntensity: p.Get(FieldMouseIntensity),
		ClickIntensity: p.Get(FieldClickIntensity),
		RoleIntensity:  cfg.IntensityWeight,
		LayerScale:     cfg.Scale,
		LayerOpacity:   cfg.Opacity,
		LayerTint:      [3]float32{cfg.Tint.X, cfg.Tint.Y, cfg.Tint.Z},
		LayerBlur:      cfg.Blur,
	}
}

// WithoutTime returns a copy of u with the time-derived fields zeroed.
func (u Uniforms) WithoutTime() Uniforms {
	u.Time = 0
	u.Rotation = Mat4{}
	return u
}

// ForEach calls fn for every uniform in declaration order with its flattened value.
// The value slice is only valid during the call.
func (u *Uniforms) ForEach(fn func(name string, value []float32)) {
	var buf [16]float32
	one := func(name string, v float32) {
		buf[0] = v
		fn(name, buf[:1])
	}
	fn(UniformResolution, u.Resolution[:])
	one(UniformTime, u.Time)
	fn(UniformMouse, u.Mouse[:])
	one(UniformGeometry, u.Geometry)
	one(UniformCoreType, float32(u.CoreType))
	one(UniformBaseShape, float32(u.BaseShape))
	one(UniformGridDensity, u.GridDensity)
	one(UniformMorphFactor, u.MorphFactor)
	one(UniformChaos, u.Chaos)
	one(UniformSpeed, u.Speed)
	one(UniformHue, u.Hue)
	one(UniformIntensity, u.Intensity)
	one(UniformSaturation, u.Saturation)
	one(UniformDimension, u.Dimension)
	fn(UniformRotation, u.Rotation[:])
	one(UniformMouseIntensity, u.MouseIntensity)
	one(UniformClickIntensity, u.ClickIntensity)
	one(UniformRoleIntensity, u.RoleIntensity)
	one(UniformLayerScale, u.LayerScale)
	one(UniformLayerOpacity, u.LayerOpacity)
	fn(UniformLayerTint, u.LayerTint[:])
	one(UniformLayerBlur, u.LayerBlur)
}

// UniformsFromLookup rebuilds a uniform set from a name based lookup such as
// the value store of a software backend. Missing uniforms are left zero.
func UniformsFromLookup(get func(name string) []float32) Uniforms {
	var u Uniforms
	f := func(name string) float32 {
		v := get(name)
		if len(v) == 0 {
			return 0
		}
		return v[0]
	}
	copy(u.Resolution[:], get(UniformResolution))
	u.Time = f(UniformTime)
	copy(u.Mouse[:], get(UniformMouse))
	u.Geometry = f(UniformGeometry)
	u.CoreType = CoreType(clampf(f(UniformCoreType), 0, float32(NumCoreTypes-1)))
	u.BaseShape = BaseShape(clampf(f(UniformBaseShape), 0, float32(NumBaseShapes-1)))
	u.GridDensity = f(UniformGridDensity)
	u.MorphFactor = f(UniformMorphFactor)
	u.Chaos = f(UniformChaos)
	u.Speed = f(UniformSpeed)
	u.Hue = f(UniformHue)
	u.Intensity = f(UniformIntensity)
	u.Saturation = f(UniformSaturation)
	u.Dimension = f(UniformDimension)
	copy(u.Rotation[:], get(UniformRotation))
	u.MouseIntensity = f(UniformMouseIntensity)
	u.ClickIntensity = f(UniformClickIntensity)
	u.RoleIntensity = f(UniformRoleIntensity)
	u.LayerScale = f(UniformLayerScale)
	u.LayerOpacity = f(UniformLayerOpacity)
	copy(u.LayerTint[:], get(UniformLayerTint))
	u.LayerBlur = f(UniformLayerBlur)
	return u
}
