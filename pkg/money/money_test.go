package money

import "testing"

func TestRoundAndNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"40", "40.00"},
		{"7.985", "7.99"},
		{"7.984", "7.98"},
		{"-1.005", "-1.01"},
		{"0.1", "0.10"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := Number(Round(MustParse(tc.in)))
			if string(got) != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestLine(t *testing.T) {
	if got := Line(MustParse("20.00"), 2); !got.Equal(MustParse("40")) {
		t.Fatalf("got %s", got)
	}
	if got := Line(MustParse("19.999"), 3); got.StringFixed(2) != "60.00" {
		t.Fatalf("got %s", got.StringFixed(2))
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("")
	if err != nil || !d.IsZero() {
		t.Fatalf("empty should be zero, got %v %v", d, err)
	}
	if _, err := Parse("abc"); err == nil {
		t.Fatal("expected error for garbage")
	}
}
