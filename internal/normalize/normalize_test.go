package normalize

import (
	"strings"
	"testing"
)

func TestHashFieldCanonicalization(t *testing.T) {
	// Case and whitespace folding must not change the digest
	base := HashField("John Doe")
	variants := []string{
		" john   doe ",
		"JOHN DOE",
		"john\tdoe",
		"John  Doe",
	}
	for _, v := range variants {
		if got := HashField(v); got != base {
			t.Errorf("HashField(%q) = %s, want %s", v, got, base)
		}
	}

	want := "94890005f3b2117a353da7260259531878cae4f541bf59998511887d1f0221a5"
	if base != want {
		t.Errorf("HashField(\"John Doe\") = %s, want %s", base, want)
	}
}

func TestHashFieldEmpty(t *testing.T) {
	if got := HashField(""); got != "" {
		t.Errorf("HashField(\"\") = %q, want empty", got)
	}
}

func TestHashFieldDeterministic(t *testing.T) {
	a := HashField("maria@example.com")
	b := HashField("maria@example.com")
	if a != b {
		t.Errorf("HashField not deterministic: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64", len(a))
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(11) 99999-9999", "11999999999"},
		{"+55 11 98765-4321", "5511987654321"},
		{"11999999999", "11999999999"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatBirthdate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"iso dashes", "1990-05-02", "19900502"},
		{"day first slashes", "02/05/1990", "19900502"},
		{"year first slashes", "1990/05/02", "19900502"},
		{"single digit day and month", "2/5/1990", "19900502"},
		{"iso single digit parts", "1990-5-2", "19900502"},
		{"bare year first", "19900502", "19900502"},
		{"bare day first rotated", "02051990", "19900502"},
		{"bare day first rotated 20xx year", "31122001", "20011231"},
		{"bare day first with teens prefix rotated", "12052001", "20011205"},
		{"empty", "", ""},
		{"garbage separators stripped", "19-05", "1905"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBirthdate(tt.in); got != tt.want {
				t.Errorf("FormatBirthdate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatBirthdateRoundTrip(t *testing.T) {
	// All accepted shapes of the same date converge
	want := "19900502"
	for _, in := range []string{"1990-05-02", "02/05/1990", "1990/05/02"} {
		if got := FormatBirthdate(in); got != want {
			t.Errorf("FormatBirthdate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"brazil", "BR"},
		{"br", "BR"},
		{"BR", "BR"},
		{"u", "U"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Country(tt.in); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegion(t *testing.T) {
	if got := Region("sp"); got != "SP" {
		t.Errorf("Region(\"sp\") = %q, want \"SP\"", got)
	}
	if got := Region(" rj "); got != "RJ" {
		t.Errorf("Region(\" rj \") = %q, want \"RJ\"", got)
	}

	// Free-text state names are PII and must come back hashed
	got := Region("São Paulo")
	if len(got) != 64 || strings.ToUpper(got) == got {
		t.Errorf("Region(\"São Paulo\") = %q, want 64-char hex digest", got)
	}
	if got != HashField("São Paulo") {
		t.Errorf("Region hash diverges from HashField: %q", got)
	}
}

func TestGender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"m", "m"},
		{"M", "m"},
		{"masculino", "m"},
		{"male", "m"},
		{"f", "f"},
		{"Feminino", "f"},
		{"FEMALE", "f"},
		{" male ", "m"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Gender(tt.in); got != tt.want {
			t.Errorf("Gender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := Gender("other"); got != HashField("other") {
		t.Errorf("Gender(\"other\") = %q, want hashed value", got)
	}
}
