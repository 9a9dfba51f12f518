// Package envs applies environment variable overrides to config fields.
//
// Each function takes the variable name and a pointer to the field it
// overrides. An empty name or an unset or empty variable leaves the field
// untouched. A value that does not parse is an error naming the variable.
package envs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

// String overrides dst with the raw value.
func String(name string, dst *string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// Int overrides dst with a base-10 integer.
func Int(name string, dst *int) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

// Int32 overrides dst with a base-10 integer that fits in 32 bits.
func Int32(name string, dst *int32) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = int32(n)
	return nil
}

// Bool overrides dst with any value strconv.ParseBool accepts.
func Bool(name string, dst *bool) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = b
	return nil
}

// List overrides dst with a comma-separated list. Items are trimmed and
// blank items dropped.
func List(name string, dst *[]string) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	out := make([]string, 0, strings.Count(v, ",")+1)
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
