package vib3

import (
	"sync"

	"github.com/chewxy/math32"
)

// AudioLevels are normalized frequency band energies from an optional audio signal source.
type AudioLevels struct {
	Bass, Mid, High float32
}

func (a AudioLevels) clamped() AudioLevels {
	c := func(v float32) float32 {
		if math32.IsNaN(v) {
			return 0
		}
		return clamp01(v)
	}
	return AudioLevels{Bass: c(a.Bass), Mid: c(a.Mid), High: c(a.High)}
}

// Snapshot is an immutable per-frame copy of a [ParamStore].
type Snapshot struct {
	Params Params
	Audio  AudioLevels
}

// Effective returns the parameters with audio modulation applied.
func (s *Snapshot) Effective() Params {
	p := s.Params
	a := s.Audio
	if a == (AudioLevels{}) {
		return p
	}
	p.SetField(FieldGridDensity, p.Get(FieldGridDensity)+a.Bass*30)
	p.SetField(FieldHue, p.Get(FieldHue)+a.Mid*60)
	p.SetField(FieldIntensity, p.Get(FieldIntensity)+a.High*0.4)
	return p
}

// ParamStore is the shared, concurrency safe parameter set of a layer system.
// A single mutex guards the whole set so readers never observe a torn
// multi-field update. The zero value is not ready for use, see [NewParamStore].
type ParamStore struct {
	mu     sync.Mutex
	params Params
	audio  AudioLevels
}

// NewParamStore returns a store initialized with [DefaultParams].
func NewParamStore() *ParamStore {
	return &ParamStore{params: DefaultParams()}
}

// Snapshot returns a consistent copy of the current parameters.
func (s *ParamStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Params: s.params, Audio: s.audio}
}

// Params returns a copy of the current parameters.
func (s *ParamStore) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// UpdateParameter stores a clamped value by name. Unknown names are ignored
// and reported by returning false.
func (s *ParamStore) UpdateParameter(name string, value float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Set(name, value)
}

// SetField stores a clamped value.
func (s *ParamStore) SetField(f Field, value float32) {
	s.mu.Lock()
	s.params.SetField(f, value)
	s.mu.Unlock()
}

// Merge applies a partial update atomically and returns the amount of known fields written.
func (s *ParamStore) Merge(partial map[string]float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for name, v := range partial {
		if s.params.Set(name, v) {
			n++
		}
	}
	return n
}

// Replace overwrites all parameters. Each field is clamped like [ParamStore.SetField].
func (s *ParamStore) Replace(p Params) {
	p = p.clamped()
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
}

// Reset restores every field to its default and clears audio levels.
func (s *ParamStore) Reset() {
	s.mu.Lock()
	s.params = DefaultParams()
	s.audio = AudioLevels{}
	s.mu.Unlock()
}

// UpdatePointer stores the normalized pointer position and its intensity.
func (s *ParamStore) UpdatePointer(x, y, intensity float32) {
	s.mu.Lock()
	s.params.SetField(FieldMouseX, x)
	s.params.SetField(FieldMouseY, y)
	s.params.SetField(FieldMouseIntensity, intensity)
	s.mu.Unlock()
}

// TriggerPulse adds intensity to the click pulse, saturating at 1.
func (s *ParamStore) TriggerPulse(intensity float32) {
	if math32.IsNaN(intensity) {
		return
	}
	s.mu.Lock()
	s.params.SetField(FieldClickIntensity, s.params.Get(FieldClickIntensity)+clamp01(intensity))
	s.mu.Unlock()
}

// DecayInteraction applies one frame of decay to the transient pointer and pulse fields.
func (s *ParamStore) DecayInteraction() {
	s.mu.Lock()
	s.params.decayInteraction()
	s.mu.Unlock()
}

// SetAudioLevels stores the latest band levels, clamped to [0,1].
func (s *ParamStore) SetAudioLevels(a AudioLevels) {
	s.mu.Lock()
	s.audio = a.clamped()
	s.mu.Unlock()
}

// AudioLevels returns the latest band levels.
func (s *ParamStore) AudioLevels() AudioLevels {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}
