package engine

import "time"

// Sensor defaults. Activation distance disambiguates taps from drags
// on touch input; the long-press delay promotes a stationary press to
// an armed drag.
const (
	DefaultActivationDistance = 8.0
	DefaultLongPressDelay     = 500 * time.Millisecond
)

// SensorConfig is the resolved activation policy for a drag session.
type SensorConfig struct {
	ActivationDistance float64       `json:"activationDistance"`
	LongPressDelay     time.Duration `json:"longPressDelay"`
	HapticFeedback     bool          `json:"hapticFeedback"`
}

// SensorOverrides is a partial caller config; nil fields fall back to
// the defaults.
type SensorOverrides struct {
	ActivationDistance *float64       `json:"activationDistance,omitempty"`
	LongPressDelay     *time.Duration `json:"longPressDelay,omitempty"`
	HapticFeedback     *bool          `json:"hapticFeedback,omitempty"`
}

// ResolveSensorConfig overlays overrides on the defaults. Negative
// values are treated as unset. Pure — triggering haptics itself is the
// bridge's job.
func ResolveSensorConfig(o *SensorOverrides) SensorConfig {
	cfg := SensorConfig{
		ActivationDistance: DefaultActivationDistance,
		LongPressDelay:     DefaultLongPressDelay,
		HapticFeedback:     true,
	}
	if o == nil {
		return cfg
	}
	if o.ActivationDistance != nil && *o.ActivationDistance >= 0 {
		cfg.ActivationDistance = *o.ActivationDistance
	}
	if o.LongPressDelay != nil && *o.LongPressDelay >= 0 {
		cfg.LongPressDelay = *o.LongPressDelay
	}
	if o.HapticFeedback != nil {
		cfg.HapticFeedback = *o.HapticFeedback
	}
	return cfg
}
