package wealth

import (
	"encoding/json"
	"testing"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{INR(1234.5), "₹1,234.50"},
		{INR(0), "₹0.00"},
		{INR(99.999), "₹100.00"},
	}
	for _, tc := range tests {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("String(%v) = %q, want %q", tc.m.Decimal(), got, tc.want)
		}
	}
	if got := INR(0).SignedString(); got != "-" {
		t.Errorf("SignedString(0) = %q, want -", got)
	}
	if got := INR(12).SignedString(); got != "+₹12.00" {
		t.Errorf("SignedString(12) = %q, want +₹12.00", got)
	}
}

func TestMoney_JSON(t *testing.T) {
	var v struct {
		A Money    `json:"a"`
		Q Quantity `json:"q"`
	}
	if err := json.Unmarshal([]byte(`{"a": 10050.456, "q": "99.5"}`), &v); err != nil {
		t.Fatal(err)
	}
	if !v.A.Equal(INR(10050.456)) || !v.Q.Equal(Q(99.5)) {
		t.Fatalf("decoded %v %v", v.A.Decimal(), v.Q)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"a":10050.46,"q":99.5}`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestMoney_PercentOf(t *testing.T) {
	if got := INR(50).PercentOf(INR(200)); !got.Equal(25) {
		t.Errorf("PercentOf = %v, want 25", got)
	}
	if got := INR(50).PercentOf(INR(0)); got != 0 {
		t.Errorf("PercentOf(0) = %v, want 0", got)
	}
}

func TestPercent_SignedString(t *testing.T) {
	if got := Percent(0).SignedString(); got != "-" {
		t.Errorf("SignedString(0) = %q", got)
	}
	if got := Percent(5.8582).SignedString(); got != "+5.86%" {
		t.Errorf("SignedString(5.8582) = %q", got)
	}
}
