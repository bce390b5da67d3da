package nav

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sri-akshat/wealth-manager"
)

func investment(code string) wealth.Investment {
	return wealth.Investment{
		ID:         1,
		CurrentNAV: wealth.Q(100.5),
		Fund:       &wealth.MutualFund{SchemeCode: code, NAV: wealth.Q(102)},
	}
}

func TestStatic(t *testing.T) {
	inv := investment("HDFC001")
	nav, err := Static{}.Latest(context.Background(), inv)
	if err != nil || !nav.Equal(wealth.Q(102)) {
		t.Errorf("Latest() = %s, %v, want the fund nav 102", nav, err)
	}
	inv.Fund = nil
	nav, err = Static{}.Latest(context.Background(), inv)
	if err != nil || !nav.Equal(wealth.Q(100.5)) {
		t.Errorf("Latest() without fund = %s, %v, want 100.5", nav, err)
	}
}

// navServer answers with the body registered for the requested path.
func navServer(t *testing.T, bodies map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestHTTP(t *testing.T) {
	srv, _ := navServer(t, map[string]string{
		"/mf/HDFC001":  `{"meta": {"scheme_code": "HDFC001"}, "data": [{"date": "15-01-2024", "nav": "105.5000"}, {"date": "14-01-2024", "nav": "104.1"}]}`,
		"/mf/ICICI001": `{"data": [{"nav": 80.25}]}`,
		"/mf/BAD":      `{"data": [{"nav": "n/a"}]}`,
		"/mf/ZERO":     `{"data": [{"nav": 0}]}`,
		"/mf/EMPTY":    `{"data": []}`,
		"/mf/HTML":     `<html>`,
	})
	p := &HTTP{URLTemplate: srv.URL + "/mf/{scheme_code}", Client: srv.Client()}

	tests := []struct {
		code    string
		want    wealth.Quantity
		wantErr string
	}{
		{"HDFC001", wealth.Q(105.5), ""},
		{"ICICI001", wealth.Q(80.25), ""},
		{"BAD", wealth.Quantity{}, "cannot read nav of BAD"},
		{"ZERO", wealth.Quantity{}, "nav of ZERO is 0"},
		{"EMPTY", wealth.Quantity{}, "cannot read nav of EMPTY"},
		{"HTML", wealth.Quantity{}, "invalid JSON response"},
		{"MISSING", wealth.Quantity{}, "404 Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := p.Latest(context.Background(), investment(tt.code))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Latest() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil || !got.Equal(tt.want) {
				t.Errorf("Latest() = %s, %v, want %s", got, err, tt.want)
			}
		})
	}
}

func TestHTTPCustomPath(t *testing.T) {
	srv, _ := navServer(t, map[string]string{"/q": `{"quote": {"price": 12.5}}`})
	p := &HTTP{URLTemplate: srv.URL + "/q?code={scheme_code}", Path: "$.quote.price", Client: srv.Client()}
	got, err := p.Latest(context.Background(), investment("SBI001"))
	if err != nil || !got.Equal(wealth.Q(12.5)) {
		t.Errorf("Latest() = %s, %v, want 12.5", got, err)
	}
}

func TestHTTPWithoutFund(t *testing.T) {
	p := &HTTP{URLTemplate: "http://127.0.0.1:1/{scheme_code}"}
	if _, err := p.Latest(context.Background(), wealth.Investment{ID: 3}); err == nil {
		t.Error("Latest() without fund succeeded")
	}
}

func TestDailyCache(t *testing.T) {
	srv, hits := navServer(t, map[string]string{"/mf/SBI001": `{"data": [{"nav": "26.10"}]}`})
	dir := t.TempDir()
	client := Daily(dir, nil)
	cache := client.Transport.(*diskCache)
	day := "2024-01-15"
	cache.today = func() string { return day }
	p := &HTTP{URLTemplate: srv.URL + "/mf/{scheme_code}", Client: client}

	for range 3 {
		got, err := p.Latest(context.Background(), investment("SBI001"))
		if err != nil || !got.Equal(wealth.Q(26.1)) {
			t.Fatalf("Latest() = %s, %v", got, err)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times within a day, want 1", n)
	}

	day = "2024-01-16"
	if _, err := p.Latest(context.Background(), investment("SBI001")); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hit %d times over two days, want 2", n)
	}

	// failures are not cached
	if _, err := p.Latest(context.Background(), investment("NOPE")); err == nil {
		t.Fatal("Latest(NOPE) succeeded")
	}
	if _, err := p.Latest(context.Background(), investment("NOPE")); err == nil {
		t.Fatal("Latest(NOPE) succeeded")
	}
	if n := hits.Load(); n != 4 {
		t.Errorf("server hit %d times, want 4", n)
	}
}
