// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var signalType = reflect.TypeOf((*Signal)(nil))

// Bind fills the *Signal fields of the struct pointed to by v with
// signals from d, looked up by the lowercased field name or by an
// explicit `sig:"name"` tag. Fields of other types and fields tagged
// `sig:"-"` are ignored. It is a convenience for testbenches probing
// many signals at once.
func Bind(d *Design, v interface{}) error {
	pv := reflect.ValueOf(v)
	if pv.Kind() != reflect.Ptr || pv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("bind: %T is not a pointer to struct", v)
	}
	sv := pv.Elem()
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Type != signalType {
			continue
		}
		name := strings.ToLower(f.Name)
		if tag, ok := f.Tag.Lookup("sig"); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		sig := d.Signal(name)
		if sig == nil {
			return errors.Wrapf(ErrUnknownSignal, "bind: field %s (%q)", f.Name, name)
		}
		if !sv.Field(i).CanSet() {
			return errors.Errorf("bind: field %s is not settable", f.Name)
		}
		sv.Field(i).Set(reflect.ValueOf(sig))
	}
	return nil
}
