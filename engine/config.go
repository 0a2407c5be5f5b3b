package engine

import (
	"bytes"
	_ "embed"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

// Default returns the built-in inline-four Description.
func Default() Description {
	d, err := Parse(defaultConfig)
	if err != nil {
		panic(errors.Wrap(err, "engine: built-in default config is invalid"))
	}
	return d
}

// Parse decodes a Description from YAML. JSON documents are accepted as well, JSON being a
// subset of YAML. Unknown keys are rejected so typos don't silently fall back to zero values.
// The decoded Description is validated.
func Parse(data []byte) (Description, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a Description from r. See Parse.
func Decode(r io.Reader) (Description, error) {
	var d Description
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return Description{}, errors.New("engine: empty config")
		}
		return Description{}, errors.Wrap(err, "engine: decode config")
	}
	if err := d.Validate(); err != nil {
		return Description{}, err
	}
	return d, nil
}

// Load reads and validates the Description stored at path.
func Load(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, errors.Wrap(err, "engine: load config")
	}
	defer f.Close()
	d, err := Decode(f)
	if err != nil {
		return Description{}, errors.Wrapf(err, "%s", path)
	}
	return d, nil
}

// Encode writes d to w as YAML.
func Encode(w io.Writer, d Description) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "engine: encode config")
	}
	return errors.Wrap(enc.Close(), "engine: encode config")
}

// Save writes d to path as YAML, replacing any existing file.
func Save(path string, d Description) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "engine: save config")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "engine: save config")
		}
	}()
	return Encode(f, d)
}
