package curve

import "github.com/holiman/uint256"

// Amounts (sats and token base units) are non-negative integers that must
// fit in 128 bits. They are carried in uint256.Int values so that products
// of two amounts can be computed exactly at double width before narrowing
// back down. Reserve-scale values multiplied at 128 bits would overflow;
// the widen-then-narrow pair below is the only place precision is at risk,
// and it is checked on both sides.

// AmountBits is the width of a single amount value.
const AmountBits = 128

// mulWide multiplies two values at the full 256-bit width. The overflow
// branch is unreachable for inputs that respect the amount width, but it is
// checked so a corrupted input can never wrap silently.
func mulWide(a, b *uint256.Int) (*uint256.Int, error) {
	res, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrInvalidConfig
	}
	return res, nil
}

// narrow checks a wide result back down to the amount width.
func narrow(v *uint256.Int) (*uint256.Int, error) {
	if v.BitLen() > AmountBits {
		return nil, ErrInvalidConfig
	}
	return v, nil
}

// addAmount adds two amounts, failing if the sum leaves the amount width.
// Two 128-bit values cannot wrap at 256 bits, so only the narrow can fail.
func addAmount(a, b *uint256.Int) (*uint256.Int, error) {
	return narrow(new(uint256.Int).Add(a, b))
}

// ParseAmount parses a decimal-string amount, the representation amounts use
// when crossing a host boundary. Rejects anything that does not fit the
// amount width.
func ParseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, ErrInvalidConfig
	}
	return narrow(v)
}

// FormatAmount renders an amount as a decimal string.
func FormatAmount(v *uint256.Int) string {
	return v.Dec()
}
