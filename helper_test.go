package wealth

import "time"

// INR is a helper for test to create money from const
func INR(v float64) Money { return M(v) }

var (
	hdfc  = MutualFund{ID: 1, SchemeCode: "HDFC001", SchemeName: "HDFC Top 100 Fund", Category: Equity, NAV: Q(100.50), AUM: M(1000000000), RiskLevel: "HIGH", ExpenseRatio: 1.5}
	icici = MutualFund{ID: 2, SchemeCode: "ICICI001", SchemeName: "ICICI Prudential Bluechip Fund", Category: Equity, NAV: Q(75.25), AUM: M(800000000), RiskLevel: "HIGH", ExpenseRatio: 1.2}
	sbi   = MutualFund{ID: 3, SchemeCode: "SBI001", SchemeName: "SBI Debt Fund", Category: Debt, NAV: Q(25.75), AUM: M(500000000), RiskLevel: "LOW", ExpenseRatio: 0.8}
)

var day = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

// holding is a helper for test to create an investment already revalued.
func holding(id int64, fund MutualFund, units, purchaseNAV, currentNAV, purchase, current float64) Investment {
	f := fund
	return Investment{
		ID:             id,
		UserID:         42,
		FundID:         fund.ID,
		Units:          Q(units),
		PurchaseNAV:    Q(purchaseNAV),
		CurrentNAV:     Q(currentNAV),
		PurchaseAmount: INR(purchase),
		CurrentValue:   INR(current),
		PurchaseDate:   day.AddDate(0, 0, int(id)),
		Status:         Completed,
		Fund:           &f,
	}
}

// sampleHoldings mirrors the two equity positions used across tests.
func sampleHoldings() []Investment {
	return []Investment{
		holding(1, hdfc, 100, 100.50, 105.50, 10050.00, 10550.00),
		holding(2, icici, 150, 75.25, 80.25, 11287.50, 12037.50),
	}
}
