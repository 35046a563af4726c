// Package normalize holds the pure string transforms shared by the key
// parser, the repos, and the offer dedup logic. The same two transforms
// exist as SQL functions on the data store (see internal/db); behavior must
// stay identical on both sides.
package normalize

import "strings"

// Code uppercases a SKU or product code and strips everything that is not
// a letter or digit.
func Code(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Digits strips everything that is not a digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UPC reduces a barcode to its comparable digit string. Zero padding is
// not significant: a 13-digit code with a leading padding zero encodes the
// same article as the 12-digit UPC, and codes that passed through integer
// columns lose their leading zeros entirely. Comparison therefore happens
// on the digit string with leading zeros stripped.
func UPC(s string) string {
	d := Digits(s)
	return strings.TrimLeft(d, "0")
}

// PCI trims and uppercases a proprietary product code.
func PCI(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
