package gs

import (
	"fmt"
	"math"
	"math/bits"
)

func trailingZeros32(v uint32) int {
	return bits.TrailingZeros32(v)
}

func f32FromBits(v uint32) float32 {
	return math.Float32frombits(v)
}

func f32Bits(v float32) uint32 {
	return math.Float32bits(v)
}

// Formatted panic()
func panicFmt(format string, a ...interface{}) {
	panic(fmt.Sprintf(format, a...))
}

func oneIfTrue(val bool) uint32 {
	if val {
		return 1
	}
	return 0
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func maxInt(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func minUint32(x, y uint32) uint32 {
	if x < y {
		return x
	}
	return y
}

func maxUint64(x, y uint64) uint64 {
	if x > y {
		return x
	}
	return y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
