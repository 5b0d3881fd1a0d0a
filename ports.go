// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// A Port is a named, sized connection point on a black box.
type Port struct {
	Name  string
	Width int
}

// Ports parses a port specification string such as "a, b, bus[4]" into
// a port list. A name without a bracketed size is 1 bit wide.
func Ports(spec string) ([]Port, error) {
	var out []Port
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			if len(out) == 0 && strings.TrimSpace(spec) == "" {
				return nil, nil
			}
			return nil, errors.Errorf("in %q: empty port name", spec)
		}
		name, width, err := parsePort(spec, field)
		if err != nil {
			return nil, err
		}
		for _, p := range out {
			if p.Name == name {
				return nil, errors.Errorf("in %q: duplicate port %q", spec, name)
			}
		}
		out = append(out, Port{Name: name, Width: width})
	}
	return out, nil
}

func parsePort(spec, field string) (string, int, error) {
	i := strings.IndexRune(field, '[')
	name := field
	if i >= 0 {
		name = field[:i]
	}
	if !validIdent(name) {
		return "", 0, errors.Errorf("in %q: invalid port name %q", spec, name)
	}
	if i < 0 {
		return name, 1, nil
	}
	if !strings.HasSuffix(field, "]") {
		return "", 0, errors.Errorf("in %q: missing ] after %q", spec, name)
	}
	n, err := strconv.Atoi(field[i+1 : len(field)-1])
	if err != nil || n < 1 {
		return "", 0, errors.Errorf("in %q: invalid width for port %q", spec, name)
	}
	return name, n, nil
}

func validIdent(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return s != ""
}
