package vib3

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Exchange format identification.
const (
	ConfigType    = "vib34d-integrated-config"
	ConfigVersion = "2.0"
)

// ErrUnknownFormat is returned when decoding a record whose type tag is not [ConfigType].
var ErrUnknownFormat = errors.New("vib3: unknown configuration format")

// Config is the persisted and exchanged configuration record.
type Config struct {
	// System is the identifier of the shape library the record was produced with.
	System string
	// Params holds every field. Fields absent from a decoded record hold their defaults.
	Params Params
}

type configJSON struct {
	Type       string         `json:"type,omitempty"`
	Version    string         `json:"version,omitempty"`
	System     string         `json:"system,omitempty"`
	Geometry   *float64       `json:"geometry,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// MarshalJSON emits every field under its canonical name.
func (c Config) MarshalJSON() ([]byte, error) {
	geom := float64(c.Params.Get(FieldGeometry))
	params := make(map[string]any, NumFields)
	for name, v := range c.Params.Map() {
		params[name] = v
	}
	return json.Marshal(configJSON{
		Type:       ConfigType,
		Version:    ConfigVersion,
		System:     c.System,
		Geometry:   &geom,
		Parameters: params,
	})
}

// UnmarshalJSON accepts any subset of fields and applies defaults for the
// rest. Unknown parameter names and non-numeric values are ignored. An
// absent type tag is accepted, a different one is rejected with [ErrUnknownFormat].
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "" && raw.Type != ConfigType {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, raw.Type)
	}
	p := DefaultParams()
	for name, v := range raw.Parameters {
		num, ok := v.(float64)
		if !ok || math.IsInf(num, 0) {
			continue
		}
		p.Set(name, float32(num))
	}
	if raw.Geometry != nil {
		p.SetField(FieldGeometry, float32(*raw.Geometry))
	}
	c.System = raw.System
	c.Params = p
	return nil
}

// DecodeConfig reads one JSON configuration record from r.
func DecodeConfig(r io.Reader) (Config, error) {
	var c Config
	err := json.NewDecoder(r).Decode(&c)
	return c, err
}

// EncodeConfig writes c to w as an indented JSON record.
func EncodeConfig(w io.Writer, c Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
