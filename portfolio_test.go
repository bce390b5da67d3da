package wealth

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleHoldings())

	if !s.TotalInvestment.Equal(INR(21337.50)) {
		t.Errorf("TotalInvestment = %v, want ₹21,337.50", s.TotalInvestment)
	}
	if !s.CurrentValue.Equal(INR(22587.50)) {
		t.Errorf("CurrentValue = %v, want ₹22,587.50", s.CurrentValue)
	}
	if !s.TotalReturns.Equal(INR(1250)) {
		t.Errorf("TotalReturns = %v, want ₹1,250.00", s.TotalReturns)
	}
	if !s.ReturnsPercentage.Equal(5.8582308142940835) {
		t.Errorf("ReturnsPercentage = %v, want 5.8582", s.ReturnsPercentage)
	}
	if s.NumberOfInvestments != 2 {
		t.Errorf("NumberOfInvestments = %d, want 2", s.NumberOfInvestments)
	}
	if diff := cmp.Diff(map[string]Percent{"equity": 100}, s.AssetAllocation); diff != "" {
		t.Errorf("AssetAllocation mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if !s.TotalInvestment.IsZero() || !s.CurrentValue.IsZero() || !s.TotalReturns.IsZero() {
		t.Errorf("Summarize(nil) amounts = %v/%v/%v, want zeros", s.TotalInvestment, s.CurrentValue, s.TotalReturns)
	}
	if s.ReturnsPercentage != 0 || s.NumberOfInvestments != 0 {
		t.Errorf("Summarize(nil) = %v%%, %d investments; want 0, 0", s.ReturnsPercentage, s.NumberOfInvestments)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"total_investment":0,"current_value":0,"total_returns":0,"returns_percentage":0,"number_of_investments":0,"asset_allocation":{}}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}
}

func TestSummarize_AllocationSumsTo100(t *testing.T) {
	investments := append(sampleHoldings(), holding(3, sbi, 400, 25.75, 26.10, 10300, 10440))
	s := Summarize(investments)

	var total Percent
	for _, p := range s.AssetAllocation {
		total += p
	}
	if !total.Equal(100) {
		t.Errorf("allocation sums to %v, want 100", total)
	}
	// 22587.50 equity and 10440 debt out of 33027.50
	if !s.AssetAllocation["debt"].Equal(31.610022) {
		t.Errorf("debt allocation = %v, want 31.61%%", s.AssetAllocation["debt"])
	}
	if _, ok := s.AssetAllocation["EQUITY"]; ok {
		t.Error("allocation keys must be lowercase")
	}
}

func TestSummarize_ZeroCurrentValue(t *testing.T) {
	s := Summarize([]Investment{holding(1, hdfc, 10, 100.5, 0, 1005, 0)})
	if diff := cmp.Diff(map[string]Percent{"equity": 0}, s.AssetAllocation); diff != "" {
		t.Errorf("AssetAllocation mismatch (-want +got):\n%s", diff)
	}
	if !s.ReturnsPercentage.Equal(-100) {
		t.Errorf("ReturnsPercentage = %v, want -100", s.ReturnsPercentage)
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleHoldings())
	if len(rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(rows))
	}
	r := rows[1]
	if r.FundName != "ICICI Prudential Bluechip Fund" || r.Category != Equity {
		t.Errorf("row = %q/%q", r.FundName, r.Category)
	}
	if !r.Returns.Equal(INR(750)) {
		t.Errorf("Returns = %v, want ₹750.00", r.Returns)
	}
	if !r.ReturnsPercentage.Equal(6.644518) {
		t.Errorf("ReturnsPercentage = %v, want 6.6445", r.ReturnsPercentage)
	}
}

func TestFilter(t *testing.T) {
	investments := append(sampleHoldings(), holding(3, sbi, 400, 25.75, 26.10, 10300, 10440))
	lo, hi := INR(10100), INR(20000)
	start := day.AddDate(0, 0, 2)

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "no criteria", filter: Filter{}, want: []int64{1, 2, 3}},
		{name: "category", filter: Filter{Category: Debt}, want: []int64{3}},
		{name: "min amount", filter: Filter{MinAmount: &lo}, want: []int64{2, 3}},
		{name: "max amount inclusive", filter: Filter{MaxAmount: ptr(INR(10050))}, want: []int64{1}},
		{name: "amount range", filter: Filter{MinAmount: &lo, MaxAmount: &hi}, want: []int64{2, 3}},
		{name: "start date inclusive", filter: Filter{StartDate: &start}, want: []int64{2, 3}},
		{name: "end date inclusive", filter: Filter{EndDate: &start}, want: []int64{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got []int64
			for _, inv := range tc.filter.Apply(investments) {
				got = append(got, inv.ID)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	start := day
	end := day.Add(-time.Hour)
	err := Filter{StartDate: &start, EndDate: &end}.Validate()
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("Validate() = %v, want ErrInvalidDateRange", err)
	}
	if err := (Filter{StartDate: &end, EndDate: &start}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (Filter{Category: "gold"}).Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("Validate() = %v, want ErrInvalidCategory", err)
	}
}

func ptr[T any](v T) *T { return &v }
