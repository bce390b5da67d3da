package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	wealth "github.com/sri-akshat/wealth-manager"
)

const secret = "test-secret-key-for-testing-only-0123456789"

func newTestIssuer(t *testing.T, now time.Time) *Issuer {
	t.Helper()
	i, err := NewIssuer(secret, 0)
	if err != nil {
		t.Fatalf("NewIssuer() error = %v", err)
	}
	i.now = func() time.Time { return now }
	return i
}

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i := newTestIssuer(t, now)
	if i.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", i.TTL(), DefaultTTL)
	}

	token, err := i.Issue("test@example.com", wealth.Admin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	p, err := i.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := Principal{Email: "test@example.com", Role: wealth.Admin, UserID: UserID("test@example.com")}
	if p != want {
		t.Errorf("Parse() = %+v, want %+v", p, want)
	}
}

func TestIssuer_ParseRejects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	i := newTestIssuer(t, now)

	expired, err := i.IssueFor("test@example.com", wealth.Customer, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	other, err := NewIssuer("another-secret-of-sufficient-length-42", 0)
	if err != nil {
		t.Fatal(err)
	}
	other.now = i.now
	forged, err := other.Issue("test@example.com", wealth.Admin)
	if err != nil {
		t.Fatal(err)
	}
	noSubject, err := i.Issue("", wealth.Customer)
	if err != nil {
		t.Fatal(err)
	}

	for name, token := range map[string]string{
		"garbage":    "invalid.token.here",
		"expired":    expired,
		"forged":     forged,
		"no subject": noSubject,
		"empty":      "",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := i.Parse(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewIssuer_SecretLength(t *testing.T) {
	for _, s := range []string{"", "your-secret-key-here", secret[:MinSecretLength-1]} {
		if _, err := NewIssuer(s, 0); err == nil {
			t.Errorf("NewIssuer(%q) succeeded, want an error", s)
		}
	}
	i, err := NewIssuer(secret[:MinSecretLength], 0)
	if err != nil {
		t.Fatalf("NewIssuer(%d bytes) error = %v", MinSecretLength, err)
	}
	if _, err := i.Issue("test@example.com", wealth.Customer); err != nil {
		t.Errorf("Issue() with a %d byte secret error = %v", MinSecretLength, err)
	}
}

func TestUserID(t *testing.T) {
	a := UserID("test@example.com")
	if a != UserID("test@example.com") || a != UserID("Test@Example.com") {
		t.Error("UserID is not stable")
	}
	if a <= 0 || a >= 1<<31 {
		t.Errorf("UserID = %d, want a positive 31-bit value", a)
	}
	if a == UserID("other@example.com") {
		t.Error("distinct emails share an id")
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
		{header: "InvalidFormat", wantErr: true},
		{header: "some.token.here", wantErr: true},
		{header: "InvalidFormat Token", wantErr: true},
		{header: "Bearer a b", wantErr: true},
		{header: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := BearerToken(tc.header)
		if tc.wantErr {
			if !errors.Is(err, ErrNotAuthenticated) {
				t.Errorf("BearerToken(%q) error = %v, want ErrNotAuthenticated", tc.header, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("BearerToken(%q) = %q, %v; want %q", tc.header, got, err, tc.want)
		}
	}
}

func TestHasher(t *testing.T) {
	h := Hasher{Cost: 4}
	hashed, err := h.Hash("test_password")
	if err != nil {
		t.Fatal(err)
	}
	if hashed == "test_password" {
		t.Fatal("password stored in clear")
	}
	if !h.Verify("test_password", hashed) {
		t.Error("Verify() = false for the right password")
	}
	if h.Verify("wrong_password", hashed) {
		t.Error("Verify() = true for a wrong password")
	}
}

func recordDetail(w http.ResponseWriter, status int, detail string) {
	w.WriteHeader(status)
	w.Write([]byte(detail))
}

func TestRequireUser(t *testing.T) {
	now := time.Now()
	i := newTestIssuer(t, now)
	token, err := i.Issue("test@example.com", wealth.Customer)
	if err != nil {
		t.Fatal(err)
	}

	var seen Principal
	h := i.RequireUser(recordDetail)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{name: "missing", header: "", wantStatus: 401, wantDetail: "Not authenticated"},
		{name: "bad format", header: "InvalidFormat", wantStatus: 401, wantDetail: "Not authenticated"},
		{name: "bad token", header: "Bearer invalid.token.here", wantStatus: 401, wantDetail: "Could not validate credentials"},
		{name: "valid", header: "Bearer " + token, wantStatus: 200},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/portfolio/summary", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == 401 {
				if got := rec.Body.String(); got != tc.wantDetail {
					t.Errorf("detail = %q, want %q", got, tc.wantDetail)
				}
				if rec.Header().Get("WWW-Authenticate") != "Bearer" {
					t.Error("missing WWW-Authenticate header")
				}
			}
		})
	}
	if seen.Email != "test@example.com" {
		t.Errorf("principal = %+v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(wealth.Admin, recordDetail)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(WithPrincipal(req.Context(), Principal{Email: "c@example.com", Role: wealth.Customer}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("customer status = %d, want 403", rec.Code)
	}

	req = req.WithContext(WithPrincipal(req.Context(), Principal{Email: "a@example.com", Role: wealth.Admin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}
}
