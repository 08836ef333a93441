package curve

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

// testConfig is the reference scenario: 1B supply, 800M sold over the
// curve, 200M virtual reserve, 1B sats FDV target.
func testConfig() Config {
	return Config{
		TotalSupply:   uint256.NewInt(1_000_000_000),
		SellAmount:    uint256.NewInt(800_000_000),
		VirtualTokens: uint256.NewInt(200_000_000),
		MCTargetSats:  uint256.NewInt(1_000_000_000),
	}
}

func mustCurve(t *testing.T) *Curve {
	t.Helper()
	c, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_DerivedInvariants(t *testing.T) {
	c := mustCurve(t)

	// y0 = vt + sell = 1e9
	if got := c.Y0(); !got.Eq(uint256.NewInt(1_000_000_000)) {
		t.Errorf("y0 = %s, want 1000000000", got.Dec())
	}
	// x0 = mc * vt^2 / (y0 * total) = 1e9 * 4e16 / 1e18 = 4e7
	if got := c.X0(); !got.Eq(uint256.NewInt(40_000_000)) {
		t.Errorf("x0 = %s, want 40000000", got.Dec())
	}
	// k = x0 * y0, exact
	wantK := new(uint256.Int).Mul(c.X0(), c.Y0())
	if got := c.K(); !got.Eq(wantK) {
		t.Errorf("k = %s, want %s", got.Dec(), wantK.Dec())
	}
}

func TestNew_ZeroFields(t *testing.T) {
	base := testConfig()

	mutations := []func(*Config){
		func(c *Config) { c.TotalSupply = new(uint256.Int) },
		func(c *Config) { c.SellAmount = new(uint256.Int) },
		func(c *Config) { c.VirtualTokens = new(uint256.Int) },
		func(c *Config) { c.MCTargetSats = new(uint256.Int) },
		func(c *Config) { c.TotalSupply = nil },
	}

	for i, mutate := range mutations {
		cfg := base
		mutate(&cfg)
		if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("mutation %d: err = %v, want ErrInvalidConfig", i, err)
		}
	}
}

func TestNew_Y0Overflow(t *testing.T) {
	max128 := uint256.MustFromDecimal("340282366920938463463374607431768211455")

	cfg := testConfig()
	cfg.SellAmount = max128
	cfg.VirtualTokens = max128
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestSnapshot(t *testing.T) {
	c := mustCurve(t)

	snap, err := c.Snapshot(new(uint256.Int))
	if err != nil {
		t.Fatalf("Snapshot(0): %v", err)
	}
	if !snap.Y.Eq(c.Y0()) || !snap.X.Eq(c.X0()) {
		t.Errorf("snapshot(0) = (x=%s, y=%s), want (x0=%s, y0=%s)",
			snap.X.Dec(), snap.Y.Dec(), c.X0().Dec(), c.Y0().Dec())
	}
	if !snap.PriceNum().Eq(&snap.X) || !snap.PriceDen().Eq(&snap.Y) {
		t.Error("price fraction should expose X/Y")
	}

	beyond := new(uint256.Int).AddUint64(c.MaxStep(), 1)
	if _, err := c.Snapshot(beyond); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Snapshot(sell+1): err = %v, want ErrOutOfRange", err)
	}
}

func TestInvariant_FloorNeverExceedsK(t *testing.T) {
	c := mustCurve(t)

	for _, step := range []uint64{0, 1, 1_000_000, 400_000_000, 799_999_999, 800_000_000} {
		snap, err := c.Snapshot(uint256.NewInt(step))
		if err != nil {
			t.Fatalf("Snapshot(%d): %v", step, err)
		}
		prod := new(uint256.Int).Mul(&snap.X, &snap.Y)
		if prod.Gt(c.K()) {
			t.Errorf("step %d: x*y = %s exceeds k = %s", step, prod.Dec(), c.K().Dec())
		}
	}
}

func TestYAt_NonIncreasing(t *testing.T) {
	c := mustCurve(t)

	prev, err := c.Snapshot(new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	for _, step := range []uint64{1, 1000, 1_000_000, 500_000_000, 800_000_000} {
		snap, err := c.Snapshot(uint256.NewInt(step))
		if err != nil {
			t.Fatalf("Snapshot(%d): %v", step, err)
		}
		if snap.Y.Gt(&prev.Y) {
			t.Errorf("y increased: y(%s)=%s > y(%s)=%s",
				snap.Step.Dec(), snap.Y.Dec(), prev.Step.Dec(), prev.Y.Dec())
		}
		prev = snap
	}
}

func TestMint_ReferenceScenario(t *testing.T) {
	c := mustCurve(t)

	newStep, out, err := c.Mint(new(uint256.Int), uint256.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	// x' = 41e6, y' = floor(4e16/41e6) = 975609756, dy = 24390244.
	if !out.Eq(uint256.NewInt(24_390_244)) {
		t.Errorf("assetOut = %s, want 24390244", out.Dec())
	}
	if !newStep.Eq(uint256.NewInt(24_390_244)) {
		t.Errorf("newStep = %s, want 24390244", newStep.Dec())
	}
}

func TestMint_ZeroInput(t *testing.T) {
	c := mustCurve(t)
	if _, _, err := c.Mint(new(uint256.Int), new(uint256.Int)); !errors.Is(err, ErrZeroInput) {
		t.Errorf("err = %v, want ErrZeroInput", err)
	}
	if _, _, err := c.Mint(new(uint256.Int), nil); !errors.Is(err, ErrZeroInput) {
		t.Errorf("nil input: err = %v, want ErrZeroInput", err)
	}
}

func TestMint_SnapshotConsistency(t *testing.T) {
	c := mustCurve(t)

	step := uint256.NewInt(10_000_000)
	quote := uint256.NewInt(2_500_000)

	newStep, out, err := c.Mint(step, quote)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if !newStep.Lt(c.MaxStep()) {
		t.Fatal("scenario should not clamp")
	}

	before, err := c.Snapshot(step)
	if err != nil {
		t.Fatal(err)
	}
	after, err := c.Snapshot(newStep)
	if err != nil {
		t.Fatal(err)
	}
	diff := new(uint256.Int).Sub(&before.Y, &after.Y)
	if !diff.Eq(out) {
		t.Errorf("assetOut = %s, y(step)-y(newStep) = %s", out.Dec(), diff.Dec())
	}
}

func TestMint_AtMaxStep(t *testing.T) {
	c := mustCurve(t)

	// At step == sellAmount, y == vt already: nothing left to sell, any
	// quote yields zero tokens and the step stays pinned.
	for _, quote := range []uint64{1, 1_000_000, 1_000_000_000_000} {
		newStep, out, err := c.Mint(c.MaxStep(), uint256.NewInt(quote))
		if err != nil {
			t.Fatalf("Mint(max, %d): %v", quote, err)
		}
		if !out.IsZero() {
			t.Errorf("quote %d: assetOut = %s, want 0", quote, out.Dec())
		}
		if !newStep.Eq(c.MaxStep()) {
			t.Errorf("quote %d: newStep = %s, want sellAmount", quote, newStep.Dec())
		}
	}
}

func TestMint_SelloutNeverExceedsSellAmount(t *testing.T) {
	c := mustCurve(t)

	step := new(uint256.Int)
	total := new(uint256.Int)
	quote := uint256.NewInt(50_000_000)

	for i := 0; i < 1000; i++ {
		newStep, out, err := c.Mint(step, quote)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		total.Add(total, out)
		step = newStep
		if step.Eq(c.MaxStep()) {
			break
		}
	}

	if !step.Eq(c.MaxStep()) {
		t.Fatalf("curve not sold out after 1000 mints, step = %s", step.Dec())
	}
	if total.Gt(c.MaxStep()) {
		t.Errorf("sum of fills %s exceeds sellAmount %s", total.Dec(), c.MaxStep().Dec())
	}
}

func TestAssetOut_MonotoneInQuote(t *testing.T) {
	c := mustCurve(t)

	step := uint256.NewInt(123_456)
	prev := new(uint256.Int)
	for _, q := range []uint64{1, 10, 1_000, 1_000_000, 50_000_000, 10_000_000_000} {
		out, err := c.AssetOutGivenQuoteIn(step, uint256.NewInt(q))
		if err != nil {
			t.Fatalf("AssetOutGivenQuoteIn(%d): %v", q, err)
		}
		if out.Lt(prev) {
			t.Errorf("output decreased at quote %d: %s < %s", q, out.Dec(), prev.Dec())
		}
		prev = out
	}
}

func TestQuoteInGivenAssetOut_RoundTrip(t *testing.T) {
	c := mustCurve(t)
	step := new(uint256.Int)

	for _, want := range []uint64{1, 1_000, 1_000_000, 100_000_000, 799_999_999} {
		target := uint256.NewInt(want)

		quote, err := c.QuoteInGivenAssetOut(step, target)
		if err != nil {
			t.Fatalf("QuoteInGivenAssetOut(%d): %v", want, err)
		}

		out, err := c.AssetOutGivenQuoteIn(step, quote)
		if err != nil {
			t.Fatalf("AssetOutGivenQuoteIn(%s): %v", quote.Dec(), err)
		}
		if out.Lt(target) {
			t.Errorf("target %d: quote %s yields only %s", want, quote.Dec(), out.Dec())
		}

		// Minimality: one sat less must fall short.
		if quote.Gt(uint256.NewInt(1)) {
			less := new(uint256.Int).SubUint64(quote, 1)
			out, err := c.AssetOutGivenQuoteIn(step, less)
			if err != nil {
				t.Fatalf("AssetOutGivenQuoteIn(quote-1): %v", err)
			}
			if !out.Lt(target) {
				t.Errorf("target %d: quote-1 still yields %s, search is not minimal", want, out.Dec())
			}
		}
	}
}

func TestQuoteInGivenAssetOut_Zero(t *testing.T) {
	c := mustCurve(t)
	quote, err := c.QuoteInGivenAssetOut(new(uint256.Int), new(uint256.Int))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.IsZero() {
		t.Errorf("quote = %s, want 0", quote.Dec())
	}
}

func TestQuoteInGivenAssetOut_ExceedsPool(t *testing.T) {
	c := mustCurve(t)

	tooMany := new(uint256.Int).AddUint64(c.MaxStep(), 1)
	if _, err := c.QuoteInGivenAssetOut(new(uint256.Int), tooMany); !errors.Is(err, ErrExceedsPool) {
		t.Errorf("err = %v, want ErrExceedsPool", err)
	}

	// At the end of the curve nothing remains above the virtual floor.
	if _, err := c.QuoteInGivenAssetOut(c.MaxStep(), uint256.NewInt(1)); !errors.Is(err, ErrExceedsPool) {
		t.Errorf("at max step: err = %v, want ErrExceedsPool", err)
	}
}

func TestSimulateMints(t *testing.T) {
	c := mustCurve(t)

	mints := []*uint256.Int{
		uint256.NewInt(1_000_000),
		uint256.NewInt(2_000_000),
		uint256.NewInt(4_000_000),
	}

	fills, err := c.SimulateMints(mints)
	if err != nil {
		t.Fatalf("SimulateMints: %v", err)
	}
	if len(fills) != len(mints) {
		t.Fatalf("got %d fills, want %d", len(fills), len(mints))
	}

	// Cross-check against manual threading.
	step := new(uint256.Int)
	for i, m := range mints {
		if !fills[i].Step.Eq(step) {
			t.Errorf("fill %d: step = %s, want %s", i, fills[i].Step.Dec(), step.Dec())
		}
		newStep, out, err := c.Mint(step, m)
		if err != nil {
			t.Fatal(err)
		}
		if !fills[i].AssetOut.Eq(out) {
			t.Errorf("fill %d: assetOut = %s, want %s", i, fills[i].AssetOut.Dec(), out.Dec())
		}
		step = newStep
	}
}

func TestSimulateMints_FailFast(t *testing.T) {
	c := mustCurve(t)

	mints := []*uint256.Int{
		uint256.NewInt(1_000_000),
		new(uint256.Int), // zero: poisons the batch
		uint256.NewInt(2_000_000),
	}
	fills, err := c.SimulateMints(mints)
	if !errors.Is(err, ErrZeroInput) {
		t.Errorf("err = %v, want ErrZeroInput", err)
	}
	if fills != nil {
		t.Errorf("expected no partial results, got %d fills", len(fills))
	}
}

func TestCumulativeQuoteToStep(t *testing.T) {
	c := mustCurve(t)

	cum, err := c.CumulativeQuoteToStep(new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if !cum.IsZero() {
		t.Errorf("cumulative at step 0 = %s, want 0", cum.Dec())
	}

	// After a 1M-sat mint, the cumulative raise equals the quote paid.
	newStep, _, err := c.Mint(new(uint256.Int), uint256.NewInt(1_000_000))
	if err != nil {
		t.Fatal(err)
	}
	cum, err = c.CumulativeQuoteToStep(newStep)
	if err != nil {
		t.Fatal(err)
	}
	if !cum.Eq(uint256.NewInt(1_000_000)) {
		t.Errorf("cumulative = %s, want 1000000", cum.Dec())
	}
}

func TestTotalRaiseSats(t *testing.T) {
	c := mustCurve(t)
	// k/vt - x0 = 2e8 - 4e7 = 1.6e8
	if got := c.TotalRaiseSats(); !got.Eq(uint256.NewInt(160_000_000)) {
		t.Errorf("TotalRaiseSats = %s, want 160000000", got.Dec())
	}
}

func TestMCSats(t *testing.T) {
	c := mustCurve(t)

	mc, err := c.MCSatsAtStep(new(uint256.Int))
	if err != nil {
		t.Fatal(err)
	}
	if !mc.Eq(uint256.NewInt(40_000_000)) {
		t.Errorf("mc at step 0 = %s, want 40000000", mc.Dec())
	}

	final, err := c.FinalMCSats()
	if err != nil {
		t.Fatal(err)
	}
	if !final.Eq(uint256.NewInt(1_000_000_000)) {
		t.Errorf("final mc = %s, want the 1e9 target", final.Dec())
	}
}

func TestProgressAtStep(t *testing.T) {
	c := mustCurve(t)

	if got := c.ProgressAtStep(uint256.NewInt(400_000_000)); !got.Eq(uint256.NewInt(40)) {
		t.Errorf("progress = %s, want 40", got.Dec())
	}
	// Denominator is totalSupply, so a fully sold curve reads 80%, not 100%.
	if got := c.ProgressAtStep(c.MaxStep()); !got.Eq(uint256.NewInt(80)) {
		t.Errorf("progress at sellout = %s, want 80", got.Dec())
	}
}

func TestAvgProgress(t *testing.T) {
	c := mustCurve(t)

	// product(2,3)/sum(2,3) = 6/5 = 1
	got, err := c.AvgProgress([]*uint256.Int{uint256.NewInt(2), uint256.NewInt(3)})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Eq(uint256.NewInt(1)) {
		t.Errorf("AvgProgress = %s, want 1", got.Dec())
	}

	if _, err := c.AvgProgress(nil); !errors.Is(err, ErrZeroInput) {
		t.Errorf("empty: err = %v, want ErrZeroInput", err)
	}
	if _, err := c.AvgProgress([]*uint256.Int{new(uint256.Int)}); !errors.Is(err, ErrZeroInput) {
		t.Errorf("zero sum: err = %v, want ErrZeroInput", err)
	}

	max128 := uint256.MustFromDecimal("340282366920938463463374607431768211455")
	if _, err := c.AvgProgress([]*uint256.Int{max128, max128}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("overflow: err = %v, want ErrInvalidConfig", err)
	}
}
