package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Options controls how documents are imported and exported.
type Options struct {
	// Encoding is the charmap used for documents with an unknown encoding label.
	Encoding string `yaml:"encoding"`
	LogLevel string `yaml:"log_level"`
	// LogFile enables a rotated log file next to console output.
	LogFile string `yaml:"log_file"`
	// MaxInfluences limits joints per vertex on export, glTF allows 4 per set.
	MaxInfluences int  `yaml:"max_influences"`
	FlipV         bool `yaml:"flip_v"`
	// Parallel builds geometries on several goroutines.
	Parallel bool `yaml:"parallel"`
}

func Default() Options {
	return Options{
		Encoding:      "Windows 1252",
		LogLevel:      "info",
		MaxInfluences: 4,
		FlipV:         true,
	}
}

var options = Default()

func Get() Options {
	return options
}

func Set(o Options) error {
	if o.Encoding != "" {
		if err := SetEncoding(o.Encoding); err != nil {
			return err
		}
	}
	if o.MaxInfluences < 1 || o.MaxInfluences > 4 {
		return errors.Errorf("max_influences must be in [1,4], got %d", o.MaxInfluences)
	}
	options = o
	return nil
}

// Parse reads yaml options on top of the defaults.
func Parse(data []byte) (Options, error) {
	o := Default()
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, errors.Wrapf(err, "Failed to unmarshal config")
	}
	return o, nil
}

// Load parses the file at path and makes it the current configuration.
func Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Cannot read config file %q", path)
	}
	o, err := Parse(data)
	if err != nil {
		return err
	}
	return Set(o)
}
