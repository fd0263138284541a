package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractWard(t *testing.T) {
	cases := map[string]string{
		"Kasarani, Nairobi":    "kasarani",
		"  Roysambu ":          "roysambu",
		"Zimmerman,Nairobi,KE": "zimmerman",
		"":                     "",
		", Nairobi":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractWard(in), "input %q", in)
	}
}

func TestParseLocationPlainText(t *testing.T) {
	loc := ParseLocation("  Kasarani, Nairobi ")
	assert.Equal(t, "Kasarani, Nairobi", loc.Raw)
	assert.Equal(t, "kasarani", loc.Ward)
	assert.False(t, loc.IsZero())
}

func TestParseLocationLegacyJSON(t *testing.T) {
	loc := ParseLocation(`{"ward":"Githurai","area":"Kiambu"}`)
	assert.Equal(t, "Githurai, Kiambu", loc.Raw)
	assert.Equal(t, "githurai", loc.Ward)

	broken := ParseLocation(`{"ward":`)
	assert.Equal(t, `{"ward":`, broken.Raw)
}

func TestLocationScanAndValue(t *testing.T) {
	var loc Location
	require.NoError(t, loc.Scan([]byte(`{"ward":"Kahawa West"}`)))
	assert.Equal(t, "kahawa west", loc.Ward)

	val, err := loc.Value()
	require.NoError(t, err)
	assert.Equal(t, "Kahawa West", val)

	require.NoError(t, loc.Scan(nil))
	assert.True(t, loc.IsZero())
	val, err = loc.Value()
	require.NoError(t, err)
	assert.Nil(t, val)

	assert.Error(t, loc.Scan(42))
}

func TestNormalizeKenyanMobile(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0712345678", "254712345678", true},
		{"0712 345 678", "254712345678", true},
		{"+254712345678", "254712345678", true},
		{"254112345678", "254112345678", true},
		{"712345678", "254712345678", true},
		{"0812345678", "", false},
		{"12345", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeKenyanMobile(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("NormalizeKenyanMobile(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLastN(t *testing.T) {
	if got := LastN("4111111111111111", 4); got != "1111" {
		t.Fatalf("expected 1111, got %q", got)
	}
	if got := LastN("12", 4); got != "12" {
		t.Fatalf("expected short value unchanged, got %q", got)
	}
}
