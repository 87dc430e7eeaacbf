package core

import (
	"math"
	"math/bits"
)

// FullyBackedRatio is the ratio reported when no supply is outstanding.
const FullyBackedRatio uint64 = 100

// MaxReserveRatio caps stored ratios on the emit and burn paths. It is the
// largest value the SQL BIGINT columns hold.
const MaxReserveRatio uint64 = math.MaxInt64

// ComputeReserveRatio returns floor(backing*100/supply), or 100 when supply is zero.
func ComputeReserveRatio(backing, supply uint64) (uint64, error) {
	if supply == 0 {
		return FullyBackedRatio, nil
	}
	hi, lo := bits.Mul64(backing, 100)
	if hi >= supply {
		return 0, PrecisionError("core: reserve ratio for backing %d and supply %d overflows", backing, supply)
	}
	quo, _ := bits.Div64(hi, lo, supply)
	return quo, nil
}

// SaturatingReserveRatio is ComputeReserveRatio clamped to MaxReserveRatio.
func SaturatingReserveRatio(backing, supply uint64) uint64 {
	ratio, err := ComputeReserveRatio(backing, supply)
	if err != nil || ratio > MaxReserveRatio {
		return MaxReserveRatio
	}
	return ratio
}

// BackingRequiredFor returns floor(amount*totalBacking/maxSupply).
func BackingRequiredFor(amount, totalBacking, maxSupply uint64) (uint64, error) {
	if maxSupply == 0 {
		return 0, PrecisionError("core: backing requirement undefined for zero max supply")
	}
	hi, lo := bits.Mul64(amount, totalBacking)
	if hi >= maxSupply {
		return 0, PrecisionError("core: backing requirement for amount %d overflows", amount)
	}
	quo, _ := bits.Div64(hi, lo, maxSupply)
	return quo, nil
}

func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, PrecisionError("core: %d + %d overflows", a, b)
	}
	return sum, nil
}

func SaturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
