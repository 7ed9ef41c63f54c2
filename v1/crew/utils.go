package crew

import (
	"fmt"
	"sort"
	"strings"
)

// Interpolate replaces every {key} in s with inputs[key]. Unknown
// placeholders are left as they are.
func Interpolate(s string, inputs map[string]string) string {
	if len(inputs) == 0 || !strings.Contains(s, "{") {
		return s
	}

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", inputs[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// arg returns args[i] as T. A missing or nil argument yields the zero value
// when optional is set.
func arg[T any](args []any, i int, optional bool) (T, error) {
	var zero T
	if i >= len(args) || args[i] == nil {
		if optional {
			return zero, nil
		}
		return zero, fmt.Errorf("%w: argument %d missing", ErrBadArguments, i)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrBadArguments, i, args[i], zero)
	}
	return v, nil
}

// recvAs returns recv as T.
func recvAs[T any](recv any) (T, error) {
	v, ok := recv.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: receiver is %T, want %T", ErrBadArguments, recv, zero)
	}
	return v, nil
}
