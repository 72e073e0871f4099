package join

import (
	"math"

	"github.com/pkg/errors"
)

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func lcm(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, ErrDegenerateWindow
	}
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	q := a / gcd(a, b)
	if q > math.MaxInt64/b {
		return 0, errors.WithMessagef(ErrChunkOverflow, "lcm(%d, %d)", a, b)
	}
	return q * b, nil
}

// LCM reduces values left to right with lcm(a,b) = |a*b| / gcd(a,b).
func LCM(values ...int64) (int64, error) {
	if len(values) == 0 {
		return 0, ErrNoWindows
	}
	result := values[0]
	if result == 0 {
		return 0, ErrDegenerateWindow
	}
	if result < 0 {
		result = -result
	}
	for _, v := range values[1:] {
		var err error
		if result, err = lcm(result, v); err != nil {
			return 0, err
		}
	}
	return result, nil
}

// GCD reduces values left to right.
func GCD(values ...int64) (int64, error) {
	if len(values) == 0 {
		return 0, ErrNoWindows
	}
	result := values[0]
	for _, v := range values[1:] {
		result = gcd(result, v)
	}
	if result == 0 {
		return 0, ErrDegenerateWindow
	}
	if result < 0 {
		result = -result
	}
	return result, nil
}
