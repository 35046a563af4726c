// Package keys classifies arbitrary user-supplied product identifiers into
// typed keys. It is pure string work: no storage, no network.
package keys

import (
	"net/url"
	"strings"

	"github.com/shelfscout/shelfscout-backend/internal/normalize"
)

type Kind string

const (
	KindASIN    Kind = "asin"
	KindUPC     Kind = "upc"
	KindPCI     Kind = "pci"
	KindBestBuy Kind = "bby"
	KindWalmart Kind = "wal"
	KindTarget  Kind = "tcin"
	KindRaw     Kind = "raw"
)

type Key struct {
	Kind  Kind
	Value string
}

// String renders the canonical prefixed form. Raw keys render as the bare
// value so that reparsing stays idempotent.
func (k Key) String() string {
	if k.Kind == KindRaw {
		return k.Value
	}
	return string(k.Kind) + ":" + k.Value
}

// prefixAliases maps accepted prefixes to their canonical kind.
var prefixAliases = map[string]Kind{
	"asin":    KindASIN,
	"upc":     KindUPC,
	"pci":     KindPCI,
	"bby":     KindBestBuy,
	"bestbuy": KindBestBuy,
	"sku":     KindBestBuy,
	"wal":     KindWalmart,
	"walmart": KindWalmart,
	"tcin":    KindTarget,
	"target":  KindTarget,
}

// Parse turns a raw identifier into a typed key. Priority: explicit
// prefix, then retailer URL shapes, then bare-value shape heuristics,
// then raw.
func Parse(raw string) Key {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Key{Kind: KindRaw, Value: s}
	}

	if idx := strings.Index(s, ":"); idx > 0 {
		prefix := strings.ToLower(strings.TrimSpace(s[:idx]))
		if kind, ok := prefixAliases[prefix]; ok {
			return Key{Kind: kind, Value: normalizeValue(kind, s[idx+1:])}
		}
	}

	if k, ok := parseRetailerURL(s); ok {
		return k
	}

	if k, ok := Classify(s); ok {
		return k
	}

	return Key{Kind: KindRaw, Value: s}
}

// Classify applies the bare-value shape heuristics. The rule order is
// fixed; the first match wins.
func Classify(value string) (Key, bool) {
	v := strings.TrimSpace(value)
	switch {
	case len(v) == 10 && isAlnum(v) && hasDigit(v):
		return Key{Kind: KindASIN, Value: strings.ToUpper(v)}, true
	case len(v) == 8 && isAlnum(v) && isLetter(rune(v[0])) && hasDigit(v):
		return Key{Kind: KindPCI, Value: strings.ToUpper(v)}, true
	case len(v) >= 12 && len(v) <= 14 && isDigits(v):
		return Key{Kind: KindUPC, Value: v}, true
	case len(v) == 8 && isDigits(v):
		return Key{Kind: KindTarget, Value: v}, true
	case len(v) >= 6 && len(v) <= 8 && isDigits(v):
		return Key{Kind: KindBestBuy, Value: v}, true
	case len(v) >= 6 && len(v) <= 12 && isDigits(v):
		return Key{Kind: KindWalmart, Value: v}, true
	}
	return Key{}, false
}

func normalizeValue(kind Kind, value string) string {
	v := strings.TrimSpace(value)
	switch kind {
	case KindASIN:
		return strings.ToUpper(v)
	case KindPCI:
		return normalize.PCI(v)
	case KindUPC, KindBestBuy, KindWalmart, KindTarget:
		return normalize.Digits(v)
	default:
		return v
	}
}

func parseRetailerURL(s string) (Key, bool) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return Key{}, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return Key{}, false
	}
	host := strings.ToLower(u.Host)
	segs := splitPath(u.Path)

	switch {
	case strings.Contains(host, "amazon."):
		// /dp/<ASIN> and /gp/product/<ASIN> shapes.
		for i, seg := range segs {
			if (seg == "dp" || seg == "product") && i+1 < len(segs) {
				cand := strings.ToUpper(segs[i+1])
				if len(cand) == 10 && isAlnum(cand) {
					return Key{Kind: KindASIN, Value: cand}, true
				}
			}
		}
	case strings.Contains(host, "target.com"):
		// /p/<slug>/-/A-<tcin>
		for _, seg := range segs {
			if strings.HasPrefix(seg, "A-") && isDigits(seg[2:]) && len(seg) > 2 {
				return Key{Kind: KindTarget, Value: seg[2:]}, true
			}
		}
	case strings.Contains(host, "bestbuy."):
		// /site/<slug>/<sku>.p or ?skuId=<sku>
		if sku := u.Query().Get("skuId"); sku != "" && isDigits(sku) {
			return Key{Kind: KindBestBuy, Value: sku}, true
		}
		for _, seg := range segs {
			if strings.HasSuffix(seg, ".p") && isDigits(strings.TrimSuffix(seg, ".p")) {
				return Key{Kind: KindBestBuy, Value: strings.TrimSuffix(seg, ".p")}, true
			}
		}
	case strings.Contains(host, "walmart."):
		// /ip/<slug>/<id>
		for i, seg := range segs {
			if seg == "ip" && len(segs) > i+1 {
				last := segs[len(segs)-1]
				if isDigits(last) {
					return Key{Kind: KindWalmart, Value: last}, true
				}
			}
		}
	}
	return Key{}, false
}

func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isLetter(r) && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
