package debounce

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Forever is the maxWait value of a configuration without a max wait.
const Forever = time.Duration(math.MaxInt64)

// DefaultWait is used when no wait option is given.
const DefaultWait = time.Second

// Option keys recognized in an Options bag.
const (
	KeyLeading                      = "leading"
	KeyTrailing                     = "trailing"
	KeyWait                         = "wait"
	KeyMaxWait                      = "maxWait"
	KeyDifferentArgs                = "differentArgs"
	KeyDifferentThis                = "differentThis"
	KeyTreatSimilarContextAsTheSame = "treatSimilarContextAsTheSame"
	KeyTreatSimilarArgsAsTheSame    = "treatSimilarArgsAsTheSame"
	KeyForceDoubleCall              = "forceDoubleCallEvenIfAttemptedOnlyOnes"
)

// Options is a raw, unvalidated options bag. Every key is optional, keys not
// listed above are ignored.
//
// Boolean keys must hold a bool. The wait and maxWait keys accept a
// time.Duration, a number of milliseconds, or a duration string such as
// "250ms" ("Infinity" is accepted for maxWait).
type Options map[string]any

// Config is a validated configuration with every default filled in.
type Config struct {
	Leading  bool
	Trailing bool
	Wait     time.Duration
	MaxWait  time.Duration

	DifferentArgs                bool
	DifferentThis                bool
	TreatSimilarContextAsTheSame bool
	TreatSimilarArgsAsTheSame    bool

	ForceDoubleCallEvenIfAttemptedOnlyOnes bool
}

// DefaultConfig returns the configuration used when no options are given:
// trailing calls only, a one second wait, no max wait, and both the receiver
// and arguments compared by reference.
func DefaultConfig() Config {
	return Config{
		Trailing:      true,
		Wait:          DefaultWait,
		MaxWait:       Forever,
		DifferentArgs: true,
		DifferentThis: true,
	}
}

// HasMaxWait reports whether attempt groups are split after MaxWait.
func (c Config) HasMaxWait() bool {
	return c.MaxWait != Forever
}

// Validate checks the bag and returns the resulting Config. All failures are
// *ConfigError values wrapping ErrInvalidConfig.
func (o Options) Validate() (Config, error) {
	conf := DefaultConfig()

	bools := []struct {
		key string
		dst *bool
	}{
		{KeyLeading, &conf.Leading},
		{KeyTrailing, &conf.Trailing},
		{KeyDifferentArgs, &conf.DifferentArgs},
		{KeyDifferentThis, &conf.DifferentThis},
		{KeyTreatSimilarContextAsTheSame, &conf.TreatSimilarContextAsTheSame},
		{KeyTreatSimilarArgsAsTheSame, &conf.TreatSimilarArgsAsTheSame},
		{KeyForceDoubleCall, &conf.ForceDoubleCallEvenIfAttemptedOnlyOnes},
	}
	for _, b := range bools {
		v, ok := o.lookup(b.key)
		if !ok {
			continue
		}

		bv, isBool := v.(bool)
		if !isBool {
			return Config{}, &ConfigError{
				Option: b.key, Value: v, Reason: "must be a boolean if provided",
			}
		}
		*b.dst = bv
	}

	if v, ok := o.lookup(KeyWait); ok {
		d, err := toDuration(KeyWait, v)
		if err != nil {
			return Config{}, err
		}
		conf.Wait = d
	}

	if v, ok := o.lookup(KeyMaxWait); ok {
		d, err := toDuration(KeyMaxWait, v)
		if err != nil {
			return Config{}, err
		}
		conf.MaxWait = d
	}

	if conf.Wait > conf.MaxWait {
		return Config{}, &ConfigError{
			Option: KeyWait,
			Value:  conf.Wait,
			Reason: fmt.Sprintf("can't be greater than %q (%s)", KeyMaxWait, conf.MaxWait),
		}
	}

	return conf, nil
}

// lookup treats a nil value the same as a missing key, so a decoded
// "maxWait: null" falls back to the default.
func (o Options) lookup(key string) (any, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}

// LoadOptions decodes a YAML document (JSON works too) into an Options bag.
// The bag is not validated, pass it to Wrap or call Validate.
func LoadOptions(data []byte) (Options, error) {
	opts := Options{}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("debounce: decoding options: %w", err)
	}

	return opts, nil
}

func toDuration(key string, v any) (time.Duration, error) {
	var d time.Duration

	switch n := v.(type) {
	case time.Duration:
		d = n
	case int:
		d = millis(int64(n))
	case int8:
		d = millis(int64(n))
	case int16:
		d = millis(int64(n))
	case int32:
		d = millis(int64(n))
	case int64:
		d = millis(n)
	case uint:
		d = millisFloat(float64(n))
	case uint8:
		d = millis(int64(n))
	case uint16:
		d = millis(int64(n))
	case uint32:
		d = millis(int64(n))
	case uint64:
		d = millisFloat(float64(n))
	case float32:
		if math.IsNaN(float64(n)) {
			return 0, &ConfigError{Option: key, Value: v, Reason: "must be a number if provided"}
		}
		d = millisFloat(float64(n))
	case float64:
		if math.IsNaN(n) {
			return 0, &ConfigError{Option: key, Value: v, Reason: "must be a number if provided"}
		}
		d = millisFloat(n)
	case string:
		s := strings.TrimSpace(n)
		switch strings.ToLower(s) {
		case "infinity", "+infinity", "inf", "+inf", "forever":
			d = Forever
		default:
			parsed, err := time.ParseDuration(s)
			if err != nil {
				return 0, &ConfigError{Option: key, Value: v, Reason: "must be a duration if provided"}
			}
			d = parsed
		}
	default:
		return 0, &ConfigError{Option: key, Value: v, Reason: "must be a number if provided"}
	}

	if d < 0 {
		return 0, &ConfigError{Option: key, Value: v, Reason: "can't be negative"}
	}

	return d, nil
}

func millis(n int64) time.Duration {
	return millisFloat(float64(n))
}

// millisFloat converts milliseconds to a Duration, saturating at Forever and
// at the negative limit so that overflow can't flip the sign.
func millisFloat(ms float64) time.Duration {
	ns := ms * float64(time.Millisecond)

	switch {
	case ns >= float64(Forever):
		return Forever
	case ns <= float64(math.MinInt64):
		return time.Duration(math.MinInt64)
	default:
		return time.Duration(ns)
	}
}
