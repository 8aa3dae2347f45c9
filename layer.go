package vib3

import (
	"strconv"

	"github.com/soypat/glgl/math/ms3"
)

// Role is the function of a layer in the five layer stack. Roles are ordered back to front.
type Role uint8

const (
	RoleBackground Role = iota
	RoleShadow
	RoleContent
	RoleHighlight
	RoleAccent
	numRoles
)

// NumRoles is the amount of canonical layer roles.
const NumRoles = int(numRoles)

// Roles returns all roles in back to front compositing order.
func Roles() []Role {
	return []Role{RoleBackground, RoleShadow, RoleContent, RoleHighlight, RoleAccent}
}

var roleNames = [numRoles]string{"background", "shadow", "content", "highlight", "accent"}

func (r Role) String() string {
	if r >= numRoles {
		return "Role(" + strconv.Itoa(int(r)) + ")"
	}
	return roleNames[r]
}

// ParseRole returns the role with the given name.
func ParseRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}
	return 0, false
}

// LayerConfig holds the per role multipliers applied on top of the shared parameters.
type LayerConfig struct {
	Role Role
	// Scale divides the evaluation domain. Larger values zoom in.
	Scale float32
	// Opacity multiplies the final alpha.
	Opacity float32
	// Tint is mixed into the final color.
	Tint ms3.Vec
	// Blur is the compositor blur radius in pixels.
	Blur float32
	// IntensityWeight multiplies final intensity to produce alpha.
	IntensityWeight float32
}

var defaultLayers = [numRoles]LayerConfig{
	RoleBackground: {Role: RoleBackground, Scale: 1.5, Opacity: 0.25, Tint: ms3.Vec{X: 0.6, Y: 0.3, Z: 0.9}, Blur: 4, IntensityWeight: 0.3},
	RoleShadow:     {Role: RoleShadow, Scale: 1.2, Opacity: 0.40, Tint: ms3.Vec{X: 0.3, Y: 0.3, Z: 0.6}, Blur: 2, IntensityWeight: 0.5},
	RoleContent:    {Role: RoleContent, Scale: 1.0, Opacity: 0.85, Tint: ms3.Vec{X: 0, Y: 0.8, Z: 1}, Blur: 0.5, IntensityWeight: 0.8},
	RoleHighlight:  {Role: RoleHighlight, Scale: 0.8, Opacity: 0.70, Tint: ms3.Vec{X: 1, Y: 0.4, Z: 0.8}, Blur: 1.5, IntensityWeight: 1.0},
	RoleAccent:     {Role: RoleAccent, Scale: 0.6, Opacity: 0.40, Tint: ms3.Vec{X: 1, Y: 1, Z: 0.6}, Blur: 3, IntensityWeight: 1.2},
}

// DefaultLayerConfig returns the built-in configuration of a role. The
// returned value is a copy, the defaults are immutable.
func DefaultLayerConfig(r Role) LayerConfig {
	if r >= numRoles {
		return LayerConfig{Role: r, Scale: 1, Opacity: 1, Tint: ms3.Vec{X: 1, Y: 1, Z: 1}, IntensityWeight: 1}
	}
	return defaultLayers[r]
}
