// Package glsllib holds the GLSL sources shared by every visualizer fragment
// program. Sources assume the uniform declarations written by glbuild.
package glsllib

import (
	_ "embed"
)

//go:embed project.glsl
var projectSrc []byte

// Project4D is the perspective projection from 4D to 3D space.
// It expects VIB3_PROJECTION_K to be declared.
//
//	vec3 project4D(vec4 p)
func Project4D() []byte { return projectSrc }

//go:embed warp.glsl
var warpSrc []byte

// CoreWarp holds the hypersphere and hypertetrahedron warps and their dispatch.
// Requires [Project4D].
//
//	vec3 applyCoreWarp(vec3 p, int core, int shape)
func CoreWarp() []byte { return warpSrc }

//go:embed main.glsl
var mainSrc []byte

// FragmentMain is the fragment entry point. It expects VIB3_GEOMETRY,
// VIB3_FRAGCOLOR and VIB3_GRID_SCALE to be declared and VIB3_DENSITY to be
// defined for density libraries.
func FragmentMain() []byte { return mainSrc }
