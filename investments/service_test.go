package investments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/auth"
	"github.com/sri-akshat/wealth-manager/nav"
	"github.com/sri-akshat/wealth-manager/openapi"
	"github.com/sri-akshat/wealth-manager/store"
)

var epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// fakeNAVs answers the NAV registered for the fund scheme code.
type fakeNAVs map[string]wealth.Quantity

func (n fakeNAVs) Latest(_ context.Context, inv wealth.Investment) (wealth.Quantity, error) {
	if inv.Fund == nil {
		return wealth.Quantity{}, errors.New("fund not loaded")
	}
	q, ok := n[inv.Fund.SchemeCode]
	if !ok {
		return wealth.Quantity{}, fmt.Errorf("no nav for %s", inv.Fund.SchemeCode)
	}
	return q, nil
}

type fixture struct {
	t       *testing.T
	store   *store.Store
	issuer  *auth.Issuer
	svc     *api.Service
	handler http.Handler
	doc     openapi.Document
	token   string
}

func newFixture(t *testing.T, provider nav.Provider) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	st.SetClock(func() time.Time { return epoch })
	if err := st.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	issuer, err := auth.NewIssuer("investments-test-secret-long-enough-for-hs256", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	s := New(st, issuer, provider, nil)
	s.now = func() time.Time { return epoch.Add(time.Minute) }
	svc := s.API()
	token, err := issuer.Issue("investor@example.com", wealth.Customer)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{t: t, store: st, issuer: issuer, svc: svc, handler: svc.Handler(api.Options{}), doc: openapi.Generate(svc), token: token}
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("cannot decode %s: %v", r.Body.String(), err)
	}
}

// do serves the request and checks JSON responses against the documented schema.
func (f *fixture) do(method, path, body, token string) response {
	f.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	route := strings.SplitN(path, "?", 2)[0]
	op, ok := f.doc.Operation(method, route)
	if !ok {
		f.t.Fatalf("%s %s is not documented", method, route)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		return response{rec}
	}
	schema, err := op.ResponseSchema(rec.Code, "application/json")
	if err != nil {
		f.t.Errorf("%s %s: undocumented response: %v", method, path, err)
	} else if err := openapi.ValidateJSON(f.doc, rec.Body.Bytes(), schema); err != nil {
		f.t.Errorf("%s %s: response %d does not match the document: %v\n%s", method, path, rec.Code, err, rec.Body.String())
	}
	return response{rec}
}

func (f *fixture) seed() {
	f.t.Helper()
	if resp := f.do(http.MethodPost, "/initialize-sample-data", "", ""); resp.Code != http.StatusOK {
		f.t.Fatalf("initialize = %d %s", resp.Code, resp.Body.String())
	}
}

func (f *fixture) invest(fundID int64, amount float64) wealth.Investment {
	f.t.Helper()
	resp := f.do(http.MethodPost, "/investments", fmt.Sprintf(`{"fund_id":%d,"purchase_amount":%v}`, fundID, amount), f.token)
	if resp.Code != http.StatusOK {
		f.t.Fatalf("invest(%d, %v) = %d %s", fundID, amount, resp.Code, resp.Body.String())
	}
	var inv wealth.Investment
	resp.decode(f.t, &inv)
	return inv
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t, nil)
	var info Info
	f.do(http.MethodGet, "/", "", "").decode(t, &info)
	if diff := cmp.Diff(Info{Service: Name, Version: Version, Status: "healthy"}, info); diff != "" {
		t.Errorf("root mismatch (-want +got):\n%s", diff)
	}
	var health api.HealthResponse
	f.do(http.MethodGet, "/health", "", "").decode(t, &health)
	if health.Status != "healthy" || health.Service != "investment-service" {
		t.Errorf("health = %+v", health)
	}
}

func TestInitializeSampleData(t *testing.T) {
	f := newFixture(t, nil)
	f.seed()
	f.seed()

	var funds []wealth.MutualFund
	f.do(http.MethodGet, "/funds", "", "").decode(t, &funds)
	if len(funds) != len(wealth.SampleFunds()) {
		t.Fatalf("funds = %d, want %d", len(funds), len(wealth.SampleFunds()))
	}
	if funds[0].SchemeCode != "HDFC001" || !funds[0].NAV.Equal(wealth.Q(100.5)) || !funds[0].LastUpdated.Equal(epoch) {
		t.Errorf("first fund = %+v", funds[0])
	}
}

func TestCreateInvestment(t *testing.T) {
	f := newFixture(t, nil)
	f.seed()

	inv := f.invest(1, 10050)
	if inv.ID != 1 || inv.FundID != 1 || inv.UserID != auth.UserID("investor@example.com") {
		t.Errorf("investment = %+v", inv)
	}
	if !inv.Units.Equal(wealth.Q(100)) || !inv.PurchaseNAV.Equal(wealth.Q(100.5)) || !inv.CurrentValue.Equal(wealth.M(10050)) {
		t.Errorf("units = %v nav = %v value = %v", inv.Units, inv.PurchaseNAV, inv.CurrentValue)
	}
	if inv.Status != wealth.Completed || !inv.PurchaseDate.Equal(epoch.Add(time.Minute)) {
		t.Errorf("status = %v date = %v", inv.Status, inv.PurchaseDate)
	}

	resp := f.do(http.MethodPost, "/investments/", `{"fund_id":99,"purchase_amount":1000}`, f.token)
	if resp.Code != http.StatusNotFound || !strings.Contains(resp.Body.String(), "Fund not found") {
		t.Errorf("unknown fund = %d %s", resp.Code, resp.Body.String())
	}

	tests := []struct {
		name string
		body string
		loc  []string
	}{
		{"zero amount", `{"fund_id":1,"purchase_amount":0}`, []string{"body", "purchase_amount"}},
		{"negative amount", `{"fund_id":1,"purchase_amount":-10}`, []string{"body", "purchase_amount"}},
		{"fund id", `{"fund_id":0,"purchase_amount":10}`, []string{"body", "fund_id"}},
		{"malformed", `{"fund_id":`, []string{"body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(http.MethodPost, "/investments", tt.body, f.token)
			if resp.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422: %s", resp.Code, resp.Body.String())
			}
			var body api.HTTPValidationError
			resp.decode(t, &body)
			if len(body.Detail) != 1 {
				t.Fatalf("detail = %+v, want one error", body.Detail)
			}
			if diff := cmp.Diff(tt.loc, body.Detail[0].Loc); diff != "" {
				t.Errorf("loc mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAuthenticationRequired(t *testing.T) {
	f := newFixture(t, nil)
	for _, rt := range f.svc.Routes {
		if !rt.Auth {
			continue
		}
		t.Run(rt.Method+" "+rt.Path, func(t *testing.T) {
			resp := f.do(rt.Method, rt.Path, "", "")
			if resp.Code != http.StatusUnauthorized || !strings.Contains(resp.Body.String(), "Not authenticated") {
				t.Errorf("status = %d %s, want 401", resp.Code, resp.Body.String())
			}
			resp = f.do(rt.Method, rt.Path, "", "not.a.token")
			if resp.Code != http.StatusUnauthorized || !strings.Contains(resp.Body.String(), "Could not validate credentials") {
				t.Errorf("status = %d %s, want 401", resp.Code, resp.Body.String())
			}
		})
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestSummary(t *testing.T) {
	f := newFixture(t, nil)
	f.seed()

	var empty wealth.Summary
	f.do(http.MethodGet, "/portfolio/summary", "", f.token).decode(t, &empty)
	if !empty.TotalInvestment.IsZero() || empty.NumberOfInvestments != 0 || len(empty.AssetAllocation) != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	f.invest(1, 10000)
	f.invest(3, 5000)
	other, _ := f.issuer.Issue("other@example.com", wealth.Customer)
	f.do(http.MethodPost, "/investments", `{"fund_id":2,"purchase_amount":7000}`, other)

	var s wealth.Summary
	f.do(http.MethodGet, "/portfolio/summary", "", f.token).decode(t, &s)
	if !s.TotalInvestment.Equal(wealth.M(15000)) || !s.CurrentValue.Equal(wealth.M(15000)) || !s.TotalReturns.IsZero() {
		t.Errorf("summary totals = %+v", s)
	}
	if s.NumberOfInvestments != 2 || s.ReturnsPercentage != 0 {
		t.Errorf("summary = %+v", s)
	}
	if len(s.AssetAllocation) != 2 || !near(float64(s.AssetAllocation["equity"]), 66.67) || !near(float64(s.AssetAllocation["debt"]), 33.33) {
		t.Errorf("allocation = %v", s.AssetAllocation)
	}
}

func TestPortfolioInvestments(t *testing.T) {
	f := newFixture(t, nil)
	f.seed()
	f.invest(1, 10000)
	f.invest(3, 5000)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"HDFC Top 100 Fund", "SBI Debt Fund"}},
		{"category=debt", []string{"SBI Debt Fund"}},
		{"category=EQUITY", []string{"HDFC Top 100 Fund"}},
		{"category=hybrid", nil},
		{"min_amount=6000", []string{"HDFC Top 100 Fund"}},
		{"max_amount=5000", []string{"SBI Debt Fund"}},
		{"min_amount=5000&max_amount=10000", []string{"HDFC Top 100 Fund", "SBI Debt Fund"}},
		{"start_date=2024-01-15", []string{"HDFC Top 100 Fund", "SBI Debt Fund"}},
		{"start_date=2024-01-16", nil},
		{"end_date=2024-01-15", []string{"HDFC Top 100 Fund", "SBI Debt Fund"}},
		{"end_date=2024-01-14", nil},
		{"start_date=2024-01-15T10:31:00Z&end_date=2024-01-15T10:31:00Z", []string{"HDFC Top 100 Fund", "SBI Debt Fund"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := f.do(http.MethodGet, "/portfolio/investments?"+tt.query, "", f.token)
			if resp.Code != http.StatusOK {
				t.Fatalf("status = %d %s", resp.Code, resp.Body.String())
			}
			var list InvestmentList
			resp.decode(t, &list)
			var got []string
			for _, row := range list.Investments {
				got = append(got, row.FundName)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("funds mismatch (-want +got):\n%s", diff)
			}
		})
	}

	invalid := []struct {
		query string
		field string
	}{
		{"category=gold", "category"},
		{"min_amount=abc", "min_amount"},
		{"start_date=yesterday", "start_date"},
		{"start_date=2024-02-01&end_date=2024-01-01", "end_date"},
	}
	for _, tt := range invalid {
		t.Run(tt.query, func(t *testing.T) {
			resp := f.do(http.MethodGet, "/portfolio/investments?"+tt.query, "", f.token)
			if resp.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422: %s", resp.Code, resp.Body.String())
			}
			var body api.HTTPValidationError
			resp.decode(t, &body)
			if len(body.Detail) != 1 || !cmp.Equal([]string{"query", tt.field}, body.Detail[0].Loc) {
				t.Errorf("detail = %+v", body.Detail)
			}
		})
	}
}

func TestUpdateNAVs(t *testing.T) {
	f := newFixture(t, fakeNAVs{"HDFC001": wealth.Q(110.55)})
	f.seed()
	f.invest(1, 10050)
	f.invest(3, 5000)

	resp := f.do(http.MethodPost, "/investments/update-navs", "", f.token)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Investment values updated successfully") {
		t.Fatalf("update-navs = %d %s", resp.Code, resp.Body.String())
	}

	var a wealth.Analytics
	f.do(http.MethodGet, "/portfolio/analytics", "", f.token).decode(t, &a)
	if len(a.Investments) != 2 {
		t.Fatalf("investments = %+v", a.Investments)
	}
	hdfc, sbi := a.Investments[0], a.Investments[1]
	if !hdfc.CurrentNAV.Equal(wealth.Q(110.55)) || !hdfc.CurrentValue.Equal(wealth.M(11055)) || !hdfc.Returns.Equal(wealth.M(1005)) {
		t.Errorf("revalued investment = %+v", hdfc)
	}
	if !near(float64(hdfc.ReturnsPercentage), 10) {
		t.Errorf("returns percentage = %v, want 10", hdfc.ReturnsPercentage)
	}
	if !sbi.CurrentNAV.Equal(wealth.Q(25.75)) || !sbi.CurrentValue.Equal(wealth.M(5000)) {
		t.Errorf("investment without nav was revalued: %+v", sbi)
	}
	if !a.Summary.CurrentValue.Equal(wealth.M(16055)) || !a.Summary.TotalReturns.Equal(wealth.M(1005)) {
		t.Errorf("summary = %+v", a.Summary)
	}

	fund, err := f.store.Funds.ByID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !fund.NAV.Equal(wealth.Q(110.55)) || !fund.LastUpdated.Equal(epoch.Add(time.Minute)) {
		t.Errorf("fund = %+v", fund)
	}
}

func TestUpdateNAVsIsAtomic(t *testing.T) {
	f := newFixture(t, fakeNAVs{"HDFC001": wealth.Q(110.55), "SBI001": wealth.Q(0)})
	f.seed()
	f.invest(1, 10050)
	f.invest(3, 5000)

	resp := f.do(http.MethodPost, "/investments/update-navs", "", f.token)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("update-navs with a zero nav = %d %s, want 500", resp.Code, resp.Body.String())
	}

	var a wealth.Analytics
	f.do(http.MethodGet, "/portfolio/analytics", "", f.token).decode(t, &a)
	if len(a.Investments) != 2 {
		t.Fatalf("investments = %+v", a.Investments)
	}
	if hdfc := a.Investments[0]; !hdfc.CurrentNAV.Equal(wealth.Q(100.5)) || !hdfc.CurrentValue.Equal(wealth.M(10050)) {
		t.Errorf("investment revalued by a failed update: %+v", hdfc)
	}
	fund, err := f.store.Funds.ByID(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !fund.NAV.Equal(wealth.Q(100.5)) {
		t.Errorf("fund nav = %s, want 100.5 unchanged", fund.NAV)
	}
}

func TestReport(t *testing.T) {
	f := newFixture(t, nil)
	f.seed()
	f.invest(1, 10050)

	resp := f.do(http.MethodGet, "/portfolio/report", "", f.token)
	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != "text/markdown; charset=utf-8" {
		t.Fatalf("markdown report = %d %q", resp.Code, resp.Header().Get("Content-Type"))
	}
	md := resp.Body.String()
	for _, want := range []string{"investor@example.com", "HDFC Top 100 Fund", "₹10,050.00"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report has no %q:\n%s", want, md)
		}
	}

	resp = f.do(http.MethodGet, "/portfolio/report?format=html", "", f.token)
	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != "text/html; charset=utf-8" {
		t.Fatalf("html report = %d %q", resp.Code, resp.Header().Get("Content-Type"))
	}
	page := resp.Body.String()
	if !strings.Contains(page, "<title>Portfolio Report</title>") || !strings.Contains(page, "<table>") {
		t.Errorf("html report:\n%s", page)
	}

	resp = f.do(http.MethodGet, "/portfolio/report?format=pdf", "", f.token)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("pdf report = %d, want 422", resp.Code)
	}
}

func TestDocument(t *testing.T) {
	f := newFixture(t, nil)
	if err := openapi.Check(f.doc); err != nil {
		t.Fatalf("Check() = %v", err)
	}
	if f.doc.Info.Title != Name || f.doc.Info.Version != Version {
		t.Errorf("info = %+v", f.doc.Info)
	}
	for _, rt := range f.svc.Routes {
		op, ok := f.doc.Operation(rt.Method, rt.Path)
		if !ok {
			t.Errorf("%s %s is served but not documented", rt.Method, rt.Path)
			continue
		}
		if rt.Auth != (len(op.Security) > 0) {
			t.Errorf("%s %s security = %v, want auth %v", rt.Method, rt.Path, op.Security, rt.Auth)
		}
	}
	report, _ := f.doc.Operation("GET", "/portfolio/report")
	if _, err := report.ResponseSchema(200, "text/markdown"); err != nil {
		t.Error(err)
	}
}
