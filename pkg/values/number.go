package values

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Number picks a variant for any Go numeric: floats become double, integers
// become int when they fit in 32 bits and int64 otherwise. Unsigned values
// past MaxInt64 fall back to double.
func Number[T constraints.Integer | constraints.Float](n T) Value {
	var half T = 1
	half /= 2
	if half != 0 {
		return Double(float64(n))
	}
	if n >= 0 && uint64(n) > math.MaxInt64 {
		return Double(float64(n))
	}
	i := int64(n)
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int(int32(i))
	}
	return Int64(i)
}
