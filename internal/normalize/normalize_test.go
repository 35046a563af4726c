package normalize

import "testing"

func TestCode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "already_clean", in: "B00TEST1234", want: "B00TEST1234"},
		{name: "lowercase", in: "b00test1234", want: "B00TEST1234"},
		{name: "dashes_and_spaces", in: " b00-test 1234 ", want: "B00TEST1234"},
		{name: "empty", in: "", want: ""},
		{name: "only_junk", in: "--  --", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Code(tc.in); got != tc.want {
				t.Fatalf("Code(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestUPC(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain_12", in: "849803098135", want: "849803098135"},
		{name: "padded_13_drops_zero", in: "0849803098135", want: "849803098135"},
		{name: "unpadded_13_kept", in: "4988030981356", want: "4988030981356"},
		{name: "integer_column_lost_zero", in: "049803098135", want: "49803098135"},
		{name: "spaces_and_dashes", in: "0 49803-098135", want: "49803098135"},
		{name: "fourteen_digit_padding", in: "00849803098135", want: "849803098135"},
		{name: "empty", in: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := UPC(tc.in); got != tc.want {
				t.Fatalf("UPC(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPCI(t *testing.T) {
	if got := PCI("  ab123456 "); got != "AB123456" {
		t.Fatalf("PCI trimmed/uppercased = %q", got)
	}
}
