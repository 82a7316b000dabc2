package amortization

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestInstallment_MatchesClosedForm(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{50000, 15.5, 12},
		{1000, 10, 6},
		{250000, 7.25, 60},
		{1200, 100, 24},
	}
	for _, c := range cases {
		r := c.rate / 100 / 12
		f := math.Pow(1+r, float64(c.term))
		want := c.principal * r * f / (f - 1)

		got := Installment(decimal.NewFromFloat(c.principal), decimal.NewFromFloat(c.rate), c.term)
		if diff := math.Abs(got.InexactFloat64() - want); diff > 0.006 {
			t.Errorf("Installment(%v,%v,%d) = %s, closed form %.4f", c.principal, c.rate, c.term, got, want)
		}
	}
}

func TestInstallment_ZeroRateIsStraightLine(t *testing.T) {
	got := Installment(d("1200"), decimal.Zero, 12)
	if !got.Equal(d("100")) {
		t.Fatalf("got %s, want 100", got)
	}
	if rows := GenerateSchedule(d("1200"), decimal.Zero, 12, time.Now()); !TotalInterest(rows).IsZero() {
		t.Fatalf("zero-rate schedule charged interest %s", TotalInterest(rows))
	}
}

func TestInstallment_NonPositiveTerm(t *testing.T) {
	if got := Installment(d("1000"), d("10"), 0); !got.IsZero() {
		t.Fatalf("got %s", got)
	}
}

func TestGenerateSchedule_FiftyThousandAtFifteenPointFive(t *testing.T) {
	start := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	rows := GenerateSchedule(d("50000"), d("15.5"), 12, start)

	if len(rows) != 12 {
		t.Fatalf("rows = %d, want 12", len(rows))
	}
	// 50000 * 0.155 / 12 = 645.8333
	if !rows[0].Interest.Equal(d("645.83")) {
		t.Errorf("first interest = %s, want 645.83", rows[0].Interest)
	}
	for i, r := range rows {
		if r.Number != i+1 {
			t.Errorf("row %d has number %d", i, r.Number)
		}
		want := start.AddDate(0, i+1, 0)
		if !r.DueDate.Equal(want) {
			t.Errorf("row %d due %v, want %v", r.Number, r.DueDate, want)
		}
		if i > 0 && !r.DueDate.After(rows[i-1].DueDate) {
			t.Errorf("row %d due date not increasing", r.Number)
		}
		if !r.Amount.Equal(r.RemainingAmount) {
			t.Errorf("row %d amount %s != remaining %s", r.Number, r.Amount, r.RemainingAmount)
		}
		if !r.Amount.Equal(rows[0].Amount) {
			t.Errorf("row %d amount %s differs from first %s", r.Number, r.Amount, rows[0].Amount)
		}
	}
}

func TestGenerateSchedule_InterestAndPrincipalReconcile(t *testing.T) {
	principals := []string{"1000", "5000", "50000", "123456.78"}
	rates := []string{"0", "1", "15.5", "36", "100"}
	for _, p := range principals {
		for _, rt := range rates {
			for term := 6; term <= 60; term += 6 {
				rows := GenerateSchedule(d(p), d(rt), term, time.Now())
				sumAmount := decimal.Zero
				for _, r := range rows {
					sumAmount = sumAmount.Add(r.Amount)
				}
				residual := sumAmount.Sub(TotalInterest(rows)).Sub(d(p)).Abs()
				// cent rounding of the installment compounds over the term
				n := decimal.NewFromInt(int64(term))
				tolerance := d("0.01").Mul(n).Mul(decimal.NewFromInt(1).Add(MonthlyRate(d(rt))).Pow(n))
				if residual.GreaterThan(tolerance) {
					t.Errorf("p=%s r=%s n=%d: amount-interest-principal residual %s > %s", p, rt, term, residual, tolerance)
				}
			}
		}
	}
}

func TestTotalRepayable(t *testing.T) {
	inst := Installment(d("50000"), d("15.5"), 12)
	if got := TotalRepayable(d("50000"), d("15.5"), 12); !got.Equal(inst.Mul(d("12"))) {
		t.Fatalf("got %s", got)
	}
}
