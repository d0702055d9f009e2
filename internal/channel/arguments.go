package channel

import "math"

// Arguments is the loosely typed argument map of a method call. Accessors
// never fail: a missing or mistyped value yields the supplied default.
type Arguments map[string]interface{}

// ArgumentsOf views a raw call argument as a map. Anything that is not a
// map behaves as an empty one.
func ArgumentsOf(v interface{}) Arguments {
	switch m := v.(type) {
	case Arguments:
		return m
	case map[string]interface{}:
		return Arguments(m)
	}
	return Arguments{}
}

// String returns the string at key, or def
func (a Arguments) String(key, def string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the bool at key, or def
func (a Arguments) Bool(key string, def bool) bool {
	if b, ok := a[key].(bool); ok {
		return b
	}
	return def
}

// Int returns the integer at key, or def. JSON decoding delivers float64,
// in-process callers usually pass int. Fractional, non-finite and
// out-of-range numbers count as mistyped.
func (a Arguments) Int(key string, def int) int {
	switch n := a[key].(type) {
	case float64:
		return intFromFloat(n, def)
	case float32:
		return intFromFloat(float64(n), def)
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return def
		}
		return int(n)
	case uint32:
		if uint64(n) > math.MaxInt {
			return def
		}
		return int(n)
	case uint64:
		if n > math.MaxInt {
			return def
		}
		return int(n)
	}
	return def
}

func intFromFloat(f float64, def int) int {
	// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt || f >= math.MaxInt {
		return def
	}
	return int(f)
}

// StringList returns the string items of the list at key. Non-string
// items are skipped; a missing or mistyped value yields nil.
func (a Arguments) StringList(key string) []string {
	switch list := a[key].(type) {
	case []string:
		return append([]string(nil), list...)
	case []interface{}:
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
