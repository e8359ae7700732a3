// Package config loads the settings shared by the dynvar tools from the
// environment.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"go-simpler.org/env"

	"github.com/nooga/dynvar/pkg/chk"
	"github.com/nooga/dynvar/pkg/jsonfmt"
	"github.com/nooga/dynvar/pkg/lol"
)

// C is the environment configuration. Command line flags override it.
type C struct {
	IndentSize       int    `env:"DYNVAR_INDENT_SIZE" default:"2" usage:"spaces per indent step in pretty output"`
	OneLine          bool   `env:"DYNVAR_ONE_LINE" default:"false" usage:"write every document on a single line"`
	NewLine          string `env:"DYNVAR_NEWLINE" default:"\n" usage:"line terminator for pretty output, escapes such as \\r\\n are understood"`
	MaxDecimalPlaces int    `env:"DYNVAR_MAX_DECIMAL_PLACES" default:"0" usage:"round doubles to this many decimals, 0 for shortest exact form"`
	LogLevel         string `env:"DYNVAR_LOG_LEVEL" default:"info" usage:"log level: off fatal error warn info debug trace"`
	Profile          bool   `env:"DYNVAR_PROFILE" default:"false" usage:"write a CPU profile to the working directory"`
}

// Env is a fixed set of variables, usable as a source in place of the
// process environment.
type Env map[string]string

func (e Env) LookupEnv(key string) (value string, ok bool) {
	value, ok = e[key]
	return
}

// New loads the configuration from the process environment.
func New() (c *C, err error) { return Load(nil) }

// Load reads the configuration from src, or from the process environment
// when src is nil.
func Load(src env.Source) (c *C, err error) {
	c = &C{}
	opts := &env.Options{SliceSep: ","}
	if src != nil {
		opts.Source = src
	}
	if err = env.Load(c, opts); chk.T(err) {
		return nil, err
	}
	if c.NewLine, err = unescape(c.NewLine); chk.T(err) {
		return nil, fmt.Errorf("DYNVAR_NEWLINE: %w", err)
	}
	if c.IndentSize < 1 {
		return nil, fmt.Errorf("DYNVAR_INDENT_SIZE: must be at least 1, got %d", c.IndentSize)
	}
	if c.MaxDecimalPlaces < 0 {
		return nil, fmt.Errorf("DYNVAR_MAX_DECIMAL_PLACES: must not be negative, got %d", c.MaxDecimalPlaces)
	}
	return
}

func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	return strconv.Unquote(`"` + s + `"`)
}

// Options returns the JSON formatting options described by c.
func (c *C) Options() jsonfmt.Options {
	return jsonfmt.Options{
		IndentSize:       c.IndentSize,
		NewLine:          c.NewLine,
		MaxDecimalPlaces: c.MaxDecimalPlaces,
	}
}

// ApplyLogLevel sets the process log level from c.
func (c *C) ApplyLogLevel() { lol.SetLogLevel(c.LogLevel) }

// Usage prints the variables, their defaults and descriptions.
func Usage(w io.Writer) {
	fmt.Fprintf(w, "Environment variables:\n\n")
	env.Usage(&C{}, w, &env.Options{SliceSep: ","})
}

// PrintEnv writes c as a shell script of KEY=value lines that can be edited
// and sourced.
func PrintEnv(c *C, w io.Writer) {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		val := fmt.Sprint(v.Field(i).Interface())
		if s, ok := v.Field(i).Interface().(string); ok {
			val = strconv.Quote(s)
		}
		fmt.Fprintf(w, "%s=%s\n", k, val)
	}
}
