package department

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Collector Office", want: "collector-office"},
		{name: "punctuation", in: "Water & Sewerage Board", want: "water-sewerage-board"},
		{name: "extra spaces", in: "  Public   Works  ", want: "public-works"},
		{name: "digits kept", in: "Zone 4 Office", want: "zone-4-office"},
		{name: "already slug", in: "collector-office", want: "collector-office"},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
