// Package config parses the JSON5 configuration files used by cmd/tdsctl
// and by DataSource records loaded from disk.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/flynn/json5"

	"github.com/datacentricorg/datacentric-sub004/go/skerr"
)

// Duration wraps time.Duration so it marshals to and from Go's duration
// string form ("17m", "5s") instead of a raw integer of nanoseconds.
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// ParseConfigFile reads the JSON5 file at path and decodes it into out.
// flagName, if non-empty, is the name of the flag the caller used to
// supply path, and is used only to produce a more useful error message.
func ParseConfigFile(path string, flagName string, out interface{}) error {
	label := "file"
	if flagName != "" {
		label = flagName + " file"
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return skerr.Wrapf(err, "Unable to read %s %q", label, path)
	}
	if err := json5.Unmarshal(b, out); err != nil {
		return skerr.Wrapf(err, "Unable to parse file %q", path)
	}
	return nil
}
