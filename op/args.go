package op

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

func (a Args) require(key string) (string, error) {
	v, ok := a.Get(key)
	if !ok {
		return "", ErrMissingArgument.With(slog.String("argument", key))
	}

	return strings.TrimSpace(v), nil
}

func invalid(key, val string, err error) *Error {
	e := ErrInvalidArgument.With(
		slog.String("argument", key),
		slog.String("value", val),
	)

	if err != nil {
		return e.Wrap(err)
	}

	return e
}

// Int parses key as a base-10 integer.
func (a Args) Int(key string) (int, error) {
	v, err := a.require(key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid(key, v, err)
	}

	return n, nil
}

// Float parses key as a floating point number.
func (a Args) Float(key string) (float64, error) {
	v, err := a.require(key)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, invalid(key, v, err)
	}

	return f, nil
}

// Seconds parses key as a possibly fractional number of seconds.
func (a Args) Seconds(key string) (time.Duration, error) {
	f, err := a.Float(key)
	if err != nil {
		return 0, err
	}

	return time.Duration(f * float64(time.Second)), nil
}

var (
	trueRx  = regexp.MustCompile(`^(?i)(t(r(ue?)?)?|y(es?)?|on|1)$`)
	falseRx = regexp.MustCompile(`^(?i)(f(a(l(se?)?)?)?|no?|off|0)$`)
)

// Bool parses key as a boolean. Abbreviations such as "t", "tr", and "f"
// are accepted.
func (a Args) Bool(key string) (bool, error) {
	v, err := a.require(key)
	if err != nil {
		return false, err
	}

	switch {
	case trueRx.MatchString(v):
		return true, nil
	case falseRx.MatchString(v):
		return false, nil
	}

	return false, invalid(key, v, nil)
}

// List splits key on ';' and drops empty entries.
func (a Args) List(key string) ([]string, error) {
	v, err := a.require(key)
	if err != nil {
		return nil, err
	}

	var out []string

	for _, s := range strings.Split(v, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out, nil
}

// Choice matches key case-insensitively against choices, accepting any
// unambiguous prefix, and returns the matching choice.
func (a Args) Choice(key string, choices ...string) (string, error) {
	v, err := a.require(key)
	if err != nil {
		return "", err
	}

	if v == "" {
		return "", invalid(key, v, nil)
	}

	lv := strings.ToLower(v)

	var match string

	for _, c := range choices {
		lc := strings.ToLower(c)
		if lc == lv {
			return c, nil
		}

		if strings.HasPrefix(lc, lv) {
			if match != "" {
				return "", invalid(key, v, nil).With(slog.String("issue", "ambiguous"))
			}

			match = c
		}
	}

	if match == "" {
		return "", invalid(key, v, nil).With(
			slog.String("accepted", strings.Join(choices, ",")),
		)
	}

	return match, nil
}
