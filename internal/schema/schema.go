// Package schema implements the option parsing and validation engine behind
// every mamba-admin subcommand. A Schema declares typed options with
// defaults, positional arity and cross-field rules; a successful parse yields
// an immutable Configuration whose values feed the database layer and the
// packer.
package schema

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Kind enumerates the value types an option can carry.
type Kind int

const (
	// Flag is a boolean switch, false unless given.
	Flag Kind = iota
	// String is a free-form string value.
	String
	// Int is a decimal integer value.
	Int
	// JSONMap is a string holding a JSON object.
	JSONMap
	// JSONList is a string holding a JSON array.
	JSONList
)

// Option describes one named option of a command schema.
type Option struct {
	Name      string
	Shorthand string
	Usage     string
	Kind      Kind
	Default   any

	// Normalize rewrites the parsed value, e.g. appending a missing file
	// extension. Only consulted for String options.
	Normalize func(string) string
}

// Schema describes the full option surface of one subcommand: named options,
// positional arity and a post-parse hook for cross-field rules.
type Schema struct {
	Name     string // command path as shown in usage, e.g. "sql configure"
	Synopsis string // positional synopsis, e.g. "[options] <name>"
	MinArgs  int
	MaxArgs  int
	Options  []Option

	// PostParse runs after every option holds a concrete value. It performs
	// normalization and cross-field validation and may place derived values
	// into the configuration.
	PostParse func(*Configuration) error
}

// Usage returns the one-line usage string for error reporting.
func (s *Schema) Usage() string {
	if s.Synopsis == "" {
		return fmt.Sprintf("usage: mamba-admin %s", s.Name)
	}
	return fmt.Sprintf("usage: mamba-admin %s %s", s.Name, s.Synopsis)
}

// Parse validates raw command-line tokens and returns the resulting
// configuration. Structural violations surface as *UsageError, a rejected
// email address as *Rejection. No side effect happens before every check has
// passed.
func (s *Schema) Parse(argv []string) (*Configuration, error) {
	fs := pflag.NewFlagSet(s.Name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() {} // the command driver renders usage text

	type binding struct {
		opt Option
		b   *bool
		i   *int
		s   *string
	}

	bindings := make([]binding, 0, len(s.Options))
	for _, opt := range s.Options {
		bd := binding{opt: opt}
		switch opt.Kind {
		case Flag:
			def, _ := opt.Default.(bool)
			bd.b = fs.BoolP(opt.Name, opt.Shorthand, def, opt.Usage)
		case Int:
			def, _ := opt.Default.(int)
			bd.i = fs.IntP(opt.Name, opt.Shorthand, def, opt.Usage)
		default:
			def, _ := opt.Default.(string)
			bd.s = fs.StringP(opt.Name, opt.Shorthand, def, opt.Usage)
		}
		bindings = append(bindings, bd)
	}

	if err := fs.Parse(argv); err != nil {
		return nil, &UsageError{Err: err}
	}

	args := fs.Args()
	if len(args) < s.MinArgs || len(args) > s.MaxArgs {
		return nil, Usagef("wrong number of arguments (%s)", s.Usage())
	}

	c := &Configuration{
		values:   make(map[string]any, len(s.Options)),
		supplied: make(map[string]bool, len(s.Options)),
		args:     args,
	}

	for _, bd := range bindings {
		c.supplied[bd.opt.Name] = fs.Changed(bd.opt.Name)
		switch bd.opt.Kind {
		case Flag:
			c.values[bd.opt.Name] = *bd.b
		case Int:
			c.values[bd.opt.Name] = *bd.i
		case String:
			v := *bd.s
			if bd.opt.Normalize != nil {
				v = bd.opt.Normalize(v)
			}
			c.values[bd.opt.Name] = v
		case JSONMap:
			m, err := JSONMapValue(*bd.s)
			if err != nil {
				return nil, &UsageError{Message: fmt.Sprintf("option --%s", bd.opt.Name), Err: err}
			}
			c.values[bd.opt.Name] = m
		case JSONList:
			l, err := JSONListValue(*bd.s)
			if err != nil {
				return nil, &UsageError{Message: fmt.Sprintf("option --%s", bd.opt.Name), Err: err}
			}
			c.values[bd.opt.Name] = l
		}
	}

	if s.PostParse != nil {
		if err := s.PostParse(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}
