// Package status holds the status enumeration that maps raw status tokens to warehouse codes
package status

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"floordwh/internal/core/normalize"
	perr "floordwh/internal/platform/errors"
	"floordwh/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

// Kind is the role a status plays in cycle and uptime math
type Kind string

const (
	// KindStart opens a cycle
	KindStart Kind = "start"
	// KindRunning counts as uptime without opening a cycle
	KindRunning Kind = "running"
	// KindStop closes a cycle and starts downtime
	KindStop Kind = "stop"
)

// Status is one enumeration entry
type Status struct {
	Token string `yaml:"token" validate:"required"`
	Code  int16  `yaml:"code" validate:"min=1"`
	Kind  Kind   `yaml:"kind" validate:"oneof=start running stop"`
}

// file is the on-disk yaml shape
type file struct {
	Statuses []Status `yaml:"statuses" validate:"required,min=1,dive"`
}

// Catalog is an immutable token/code lookup built once at start-up
type Catalog struct {
	byToken map[string]Status
	byCode  map[int16]Status
	ordered []Status
}

// Default returns the stock enumeration START=1 ON=2 STOP=3
func Default() *Catalog {
	c, err := New([]Status{
		{Token: "START", Code: 1, Kind: KindStart},
		{Token: "ON", Code: 2, Kind: KindRunning},
		{Token: "STOP", Code: 3, Kind: KindStop},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// New validates entries and builds a Catalog
// tokens and codes must be unique; at least one start and one stop kind is required
func New(entries []Status) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, perr.Validationf("status enumeration is empty")
	}
	c := &Catalog{
		byToken: make(map[string]Status, len(entries)),
		byCode:  make(map[int16]Status, len(entries)),
	}
	var starts, stops int
	for _, e := range entries {
		e.Token = normalize.Field(e.Token)
		if err := validate.Struct(e); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "status %q", e.Token)
		}
		if _, dup := c.byToken[e.Token]; dup {
			return nil, perr.Validationf("duplicate status token %q", e.Token)
		}
		if _, dup := c.byCode[e.Code]; dup {
			return nil, perr.Validationf("duplicate status code %d", e.Code)
		}
		switch e.Kind {
		case KindStart:
			starts++
		case KindStop:
			stops++
		}
		c.byToken[e.Token] = e
		c.byCode[e.Code] = e
		c.ordered = append(c.ordered, e)
	}
	if starts == 0 || stops == 0 {
		return nil, perr.Validationf("status enumeration needs at least one start and one stop kind")
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].Code < c.ordered[j].Code })
	return c, nil
}

// LoadYAML reads an enumeration file; an empty path yields Default
// a configured but missing or malformed file is an error, not a silent fallback
func LoadYAML(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "status file %s", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "read status file %s", path)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "parse status file %s", path)
	}
	if err := validate.Struct(f); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "status file %s", path)
	}
	return New(f.Statuses)
}

// Code maps a raw token to its code; the token is cleaned first and matched case sensitively
func (c *Catalog) Code(token string) (int16, bool) {
	s, ok := c.byToken[normalize.Field(token)]
	return s.Code, ok
}

// Valid reports whether code belongs to the enumeration
func (c *Catalog) Valid(code int16) bool {
	_, ok := c.byCode[code]
	return ok
}

// Statuses returns the entries ordered by code
func (c *Catalog) Statuses() []Status {
	return append([]Status(nil), c.ordered...)
}

// String renders the catalog for logs
func (c *Catalog) String() string {
	out := ""
	for i, s := range c.ordered {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d(%s)", s.Token, s.Code, s.Kind)
	}
	return out
}
