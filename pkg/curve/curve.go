// Package curve implements a constant-product bonding curve with virtual
// token reserves: the pricing mechanism that sells a token progressively
// against sats before a conventional pool exists.
//
// The invariant is X * Y = k, where Y is the token-side reserve
// vt + (sellAmount - step) and X is the conceptual sats-side reserve.
// X0 is derived from the fully diluted valuation targeted at curve
// completion:
//
//	MC_final ≈ (X0 * Y0 / vt²) * totalSupply
//	=> X0 ≈ mcTargetSats * vt² / (Y0 * totalSupply)
//
// A Curve is immutable once constructed and safe for concurrent use. Every
// operation is a pure function of (curve, step, amount); callers own and
// thread the step value themselves. All arithmetic is exact integer math
// over 128-bit amounts with 256-bit intermediates, and any result that
// cannot be represented is an error, never a wrap.
package curve

import "github.com/holiman/uint256"

// Config carries the curve parameters. All four fields are required and
// must be non-zero amounts.
type Config struct {
	TotalSupply   *uint256.Int // total token supply
	SellAmount    *uint256.Int // tokens sold over the curve
	VirtualTokens *uint256.Int // virtual token reserve vt
	MCTargetSats  *uint256.Int // fully diluted valuation target at completion
}

// Curve is the engine state: the config copy plus derived invariants.
type Curve struct {
	totalSupply uint256.Int
	sellAmount  uint256.Int
	vt          uint256.Int

	y0 uint256.Int // vt + sellAmount
	x0 uint256.Int // sats-side reserve at step 0
	k  uint256.Int // x0 * y0
}

// Snapshot is the reserve state at a given step. Price is the exact
// fraction X / Y (sats per token base unit); it is exposed as a
// numerator/denominator pair rather than a quotient so no precision is
// lost.
type Snapshot struct {
	Step uint256.Int
	X    uint256.Int
	Y    uint256.Int
}

// PriceNum returns the price numerator (X).
func (s *Snapshot) PriceNum() *uint256.Int {
	return new(uint256.Int).Set(&s.X)
}

// PriceDen returns the price denominator (Y).
func (s *Snapshot) PriceDen() *uint256.Int {
	return new(uint256.Int).Set(&s.Y)
}

// Fill is one result of a batch simulation: the step before the mint and
// the tokens it produced.
type Fill struct {
	Step     uint256.Int
	AssetOut uint256.Int
}

// New validates cfg and derives the curve invariants.
func New(cfg Config) (*Curve, error) {
	for _, v := range []*uint256.Int{cfg.TotalSupply, cfg.SellAmount, cfg.VirtualTokens, cfg.MCTargetSats} {
		if v == nil || v.IsZero() {
			return nil, ErrInvalidConfig
		}
		if _, err := narrow(v); err != nil {
			return nil, err
		}
	}

	y0, err := addAmount(cfg.VirtualTokens, cfg.SellAmount)
	if err != nil {
		return nil, err
	}

	// X0 ≈ mcTargetSats * vt² / (Y0 * totalSupply), exact at 256 bits.
	vtSq, err := mulWide(cfg.VirtualTokens, cfg.VirtualTokens)
	if err != nil {
		return nil, err
	}
	num, err := mulWide(cfg.MCTargetSats, vtSq)
	if err != nil {
		return nil, err
	}
	den, err := mulWide(y0, cfg.TotalSupply)
	if err != nil {
		return nil, err
	}
	if den.IsZero() {
		return nil, ErrInvalidConfig
	}

	x0, err := narrow(new(uint256.Int).Div(num, den))
	if err != nil {
		return nil, err
	}
	if x0.IsZero() {
		return nil, ErrInvalidConfig
	}

	kWide, err := mulWide(x0, y0)
	if err != nil {
		return nil, err
	}
	k, err := narrow(kWide)
	if err != nil {
		return nil, err
	}

	c := &Curve{}
	c.totalSupply.Set(cfg.TotalSupply)
	c.sellAmount.Set(cfg.SellAmount)
	c.vt.Set(cfg.VirtualTokens)
	c.y0.Set(y0)
	c.x0.Set(x0)
	c.k.Set(k)
	return c, nil
}

// TotalSupply returns the total token supply.
func (c *Curve) TotalSupply() *uint256.Int { return new(uint256.Int).Set(&c.totalSupply) }

// MaxStep returns the sellable amount, the upper bound of the step domain.
func (c *Curve) MaxStep() *uint256.Int { return new(uint256.Int).Set(&c.sellAmount) }

// VirtualTokens returns the virtual token reserve vt.
func (c *Curve) VirtualTokens() *uint256.Int { return new(uint256.Int).Set(&c.vt) }

// Y0 returns the token-side reserve at step 0.
func (c *Curve) Y0() *uint256.Int { return new(uint256.Int).Set(&c.y0) }

// X0 returns the sats-side reserve at step 0.
func (c *Curve) X0() *uint256.Int { return new(uint256.Int).Set(&c.x0) }

// K returns the constant-product invariant.
func (c *Curve) K() *uint256.Int { return new(uint256.Int).Set(&c.k) }

// yAt returns Y(step) = vt + (sellAmount - step). Non-increasing in step.
func (c *Curve) yAt(step *uint256.Int) (*uint256.Int, error) {
	if step.Gt(&c.sellAmount) {
		return nil, ErrOutOfRange
	}
	remaining := new(uint256.Int).Sub(&c.sellAmount, step)
	return addAmount(&c.vt, remaining)
}

// xFromY returns X = floor(k / Y). y > 0 holds for every valid step since
// vt > 0.
func (c *Curve) xFromY(y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(&c.k, y)
}

// Snapshot returns the reserve state (step, X, Y) at the given step.
func (c *Curve) Snapshot(step *uint256.Int) (*Snapshot, error) {
	y, err := c.yAt(step)
	if err != nil {
		return nil, err
	}
	x := c.xFromY(y)

	snap := &Snapshot{}
	snap.Step.Set(step)
	snap.X.Set(x)
	snap.Y.Set(y)
	return snap, nil
}

// Mint buys tokens with sats at the given step. It returns the updated step
// and the tokens received. This is the only state-advancing computation;
// the caller threads newStep into its own tracking.
func (c *Curve) Mint(step, satsIn *uint256.Int) (newStep, assetOut *uint256.Int, err error) {
	if satsIn == nil || satsIn.IsZero() {
		return nil, nil, ErrZeroInput
	}

	y, err := c.yAt(step)
	if err != nil {
		return nil, nil, err
	}
	x := c.xFromY(y)

	x2, err := addAmount(x, satsIn)
	if err != nil {
		return nil, nil, err
	}

	// Y' = floor(k / X'), floored at vt: the virtual reserve is never sold.
	yPrime := new(uint256.Int).Div(&c.k, x2)
	if yPrime.Lt(&c.vt) {
		yPrime.Set(&c.vt)
	}

	// dy = Y - Y', saturating. X' strictly increased, so Y' <= Y always.
	dy := new(uint256.Int)
	if yPrime.Lt(y) {
		dy.Sub(y, yPrime)
	}

	ns := new(uint256.Int).Add(step, dy)
	if ns.Gt(&c.sellAmount) {
		ns.Set(&c.sellAmount)
	}
	return ns, dy, nil
}

// AssetOutGivenQuoteIn returns only the token output of Mint.
func (c *Curve) AssetOutGivenQuoteIn(step, quoteIn *uint256.Int) (*uint256.Int, error) {
	_, out, err := c.Mint(step, quoteIn)
	return out, err
}

// QuoteInGivenAssetOut solves for the minimal satsIn such that a mint at
// the given step yields at least assetOut tokens. The mapping
// quoteIn -> assetOut is non-decreasing, so a lower-bound binary search
// over [1, maxQuote] converges in O(log maxQuote) mint evaluations.
func (c *Curve) QuoteInGivenAssetOut(step, assetOut *uint256.Int) (*uint256.Int, error) {
	if assetOut.IsZero() {
		return new(uint256.Int), nil
	}

	y, err := c.yAt(step)
	if err != nil {
		return nil, err
	}

	// Tokens remaining above the virtual floor.
	maxTokens := new(uint256.Int).Sub(y, &c.vt)
	if assetOut.Gt(maxTokens) {
		return nil, ErrExceedsPool
	}

	x := c.xFromY(y)
	xFinal := new(uint256.Int).Div(&c.k, &c.vt)
	if xFinal.Lt(x) {
		return nil, ErrInvalidConfig
	}
	maxQuote := new(uint256.Int).Sub(xFinal, x)
	if maxQuote.IsZero() {
		return nil, ErrExceedsPool
	}

	lo := uint256.NewInt(1)
	hi := maxQuote
	mid := new(uint256.Int)
	for lo.Lt(hi) {
		// mid = lo + (hi-lo)/2
		mid.Sub(hi, lo)
		mid.Rsh(mid, 1)
		mid.Add(lo, mid)

		out, err := c.AssetOutGivenQuoteIn(step, mid)
		if err != nil {
			return nil, err
		}
		if !out.Lt(assetOut) {
			hi.Set(mid)
		} else {
			lo.Add(mid, uint256.NewInt(1))
		}
	}
	return lo, nil
}

// SimulateMints applies the mint amounts sequentially from step 0,
// threading each newStep into the next call. The batch fails atomically on
// the first mint error; no partial results are returned.
func (c *Curve) SimulateMints(mints []*uint256.Int) ([]Fill, error) {
	step := new(uint256.Int)
	results := make([]Fill, 0, len(mints))

	for _, m := range mints {
		newStep, out, err := c.Mint(step, m)
		if err != nil {
			return nil, err
		}
		var f Fill
		f.Step.Set(step)
		f.AssetOut.Set(out)
		results = append(results, f)
		step = newStep
	}
	return results, nil
}

// CumulativeQuoteToStep returns the sats raised from step 0 up to step:
// X(step) - X0, saturating at zero.
func (c *Curve) CumulativeQuoteToStep(step *uint256.Int) (*uint256.Int, error) {
	snap, err := c.Snapshot(step)
	if err != nil {
		return nil, err
	}
	cum := new(uint256.Int)
	if snap.X.Gt(&c.x0) {
		cum.Sub(&snap.X, &c.x0)
	}
	return cum, nil
}

// TotalRaiseSats returns the sats raised if the full window
// [0, sellAmount] is sold: X_final - X0 with X_final = floor(k / vt).
func (c *Curve) TotalRaiseSats() *uint256.Int {
	xFinal := new(uint256.Int).Div(&c.k, &c.vt)
	total := new(uint256.Int)
	if xFinal.Gt(&c.x0) {
		total.Sub(xFinal, &c.x0)
	}
	return total
}

// MCSatsAtStep returns the approximate fully diluted valuation at a step:
// floor(X(step) * totalSupply / Y(step)).
func (c *Curve) MCSatsAtStep(step *uint256.Int) (*uint256.Int, error) {
	snap, err := c.Snapshot(step)
	if err != nil {
		return nil, err
	}
	if snap.Y.IsZero() {
		// Unreachable while vt > 0; checked so a division can never panic.
		return nil, ErrInvalidConfig
	}

	num, err := mulWide(&snap.X, &c.totalSupply)
	if err != nil {
		return nil, err
	}
	return narrow(num.Div(num, &snap.Y))
}

// FinalMCSats returns the valuation at curve completion.
func (c *Curve) FinalMCSats() (*uint256.Int, error) {
	return c.MCSatsAtStep(&c.sellAmount)
}

// ProgressAtStep returns step * 100 / totalSupply. Note the denominator:
// progress is measured against the total supply, not the sellable window,
// so it stays below 100% whenever sellAmount < totalSupply. The
// multiplication saturates at the amount width.
func (c *Curve) ProgressAtStep(step *uint256.Int) *uint256.Int {
	prod := new(uint256.Int).Mul(step, uint256.NewInt(100))
	if prod.BitLen() > AmountBits {
		prod.SetAllOne()
		prod.Rsh(prod, 256-AmountBits)
	}
	return prod.Div(prod, &c.totalSupply)
}

// AvgProgress returns product(steps) / sum(steps). This is not an average
// under any usual definition; the formula is kept as the reference defines
// it. A product that leaves the amount width is ErrInvalidConfig, and an
// empty slice or zero sum is ErrZeroInput, so the computation can neither
// wrap nor divide by zero.
func (c *Curve) AvgProgress(steps []*uint256.Int) (*uint256.Int, error) {
	if len(steps) == 0 {
		return nil, ErrZeroInput
	}

	product := uint256.NewInt(1)
	sum := new(uint256.Int)
	for _, s := range steps {
		p, err := mulWide(product, s)
		if err != nil {
			return nil, err
		}
		if product, err = narrow(p); err != nil {
			return nil, err
		}
		if _, err = narrow(sum.Add(sum, s)); err != nil {
			return nil, err
		}
	}
	if sum.IsZero() {
		return nil, ErrZeroInput
	}
	return product.Div(product, sum), nil
}
