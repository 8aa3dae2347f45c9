//go:build tinygo || !cgo

package vib3aux

import "errors"

func ui(cfg UIConfig) error {
	return errors.New("require cgo for UI rendering")
}
