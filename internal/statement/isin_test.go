package statement

import "testing"

func TestValidISIN(t *testing.T) {
	tests := []struct {
		name string
		isin string
		want bool
	}{
		{"valid US", "US0378331005", true},
		{"valid XS", "XS2530201644", true},
		{"valid CH", "CH0012032048", true},
		{"too short", "XS253020164", false},
		{"too long", "XS25302016445", false},
		{"lowercase", "xs2530201644", false},
		{"digit country code", "1S2530201644", false},
		{"letter check digit", "US037833100A", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidISIN(tt.isin); got != tt.want {
				t.Errorf("ValidISIN(%q) = %v, want %v", tt.isin, got, tt.want)
			}
		})
	}
}

func TestChecksumOK(t *testing.T) {
	tests := []struct {
		name string
		isin string
		want bool
	}{
		{"valid US", "US0378331005", true},
		{"valid XS", "XS2530201644", true},
		{"valid DE", "DE0005140008", true},
		{"corrupt check digit", "US0378331004", false},
		{"corrupt body digit", "US0378341005", false},
		{"malformed", "XS253020164", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChecksumOK(tt.isin); got != tt.want {
				t.Errorf("ChecksumOK(%q) = %v, want %v", tt.isin, got, tt.want)
			}
		})
	}
}
