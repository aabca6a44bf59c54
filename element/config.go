package element

import "errors"

// ErrInvalidConfiguration is returned by NewConfig when any parameter is out
// of its valid range. No partial configuration is ever returned alongside
// this error.
var ErrInvalidConfiguration = errors.New("keyer: invalid configuration")

// Config is the validated, immutable-after-construction parameter bundle
// for a keyer instance (spec.md §3/§4.7).
type Config struct {
	mode              Mode
	unitMS            uint16
	debounceMS        uint8
	queueCapacity     uint16
	charSpaceEnabled  bool
}

const (
	minUnitMS   = 17
	maxUnitMS   = 200
	minDebounce = 1
	maxDebounce = 50
	minQueueCap = 8
	maxQueueCap = 256
)

// NewConfig validates and constructs a Config. It fails with
// ErrInvalidConfiguration, mutating nothing, when any parameter is out of
// range; see spec.md §3 for the exact bounds.
func NewConfig(mode Mode, unitMS uint16, debounceMS uint8, queueCapacity uint16, charSpaceEnabled bool) (Config, error) {
	if unitMS < minUnitMS || unitMS > maxUnitMS {
		return Config{}, ErrInvalidConfiguration
	}
	if debounceMS < minDebounce || debounceMS > maxDebounce {
		return Config{}, ErrInvalidConfiguration
	}
	if queueCapacity < minQueueCap || queueCapacity > maxQueueCap {
		return Config{}, ErrInvalidConfiguration
	}
	if mode != ModeA && mode != ModeB && mode != SuperKeyer {
		return Config{}, ErrInvalidConfiguration
	}
	return Config{
		mode:             mode,
		unitMS:           unitMS,
		debounceMS:       debounceMS,
		queueCapacity:    queueCapacity,
		charSpaceEnabled: charSpaceEnabled,
	}, nil
}

// NewConfigFromWPM mirrors the WPM-first constructor in the original Rust
// design (PARIS standard: 1200/WPM milliseconds per unit).
func NewConfigFromWPM(mode Mode, wpm uint16, debounceMS uint8, queueCapacity uint16, charSpaceEnabled bool) (Config, error) {
	if wpm == 0 {
		return Config{}, ErrInvalidConfiguration
	}
	return NewConfig(mode, uint16(1200/wpm), debounceMS, queueCapacity, charSpaceEnabled)
}

func (c Config) Mode() Mode                { return c.mode }
func (c Config) UnitMS() uint16             { return c.unitMS }
func (c Config) DebounceMS() uint8          { return c.debounceMS }
func (c Config) QueueCapacity() uint16      { return c.queueCapacity }
func (c Config) CharSpaceEnabled() bool     { return c.charSpaceEnabled }

// WPM returns the informational words-per-minute figure for the configured
// unit duration (spec.md §3: wpm = 1200 / unit_ms).
func (c Config) WPM() uint16 {
	if c.unitMS == 0 {
		return 0
	}
	return uint16(1200 / c.unitMS)
}

// CharSpaceDurationMS returns the character-space duration in milliseconds
// (3 units).
func (c Config) CharSpaceDurationMS() uint32 {
	return uint32(c.unitMS) * 3
}
