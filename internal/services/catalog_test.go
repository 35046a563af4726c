package services

import (
	"context"
	"testing"
	"time"

	"github.com/shelfscout/shelfscout-backend/internal/types"
)

func catalogRow(model, pci, upc string) *types.CatalogRecord {
	rec := &types.CatalogRecord{ModelNumber: model, Name: "Widget " + model}
	if pci != "" {
		rec.PCI = strPtr(pci)
	}
	if upc != "" {
		rec.UPC = strPtr(upc)
	}
	return rec
}

func TestResolveIdentityPCIWins(t *testing.T) {
	byPCI := catalogRow("WID-100", "AB123456", "")
	byUPC := catalogRow("WID-200", "", "849803098135")
	repo := &fakeCatalogRepo{rows: []*types.CatalogRecord{byPCI, byUPC}}
	svc := NewCatalogService(nil, testLogger(), repo)

	// Both codes present and pointing at different records: PCI is
	// authoritative, the UPC path is never consulted.
	rec, err := svc.ResolveIdentity(context.Background(), "AB123456", "849803098135")
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if rec == nil || rec.ModelNumber != "WID-100" {
		t.Fatalf("resolved %+v, want the PCI record", rec)
	}
}

func TestResolveIdentityUPCFallback(t *testing.T) {
	byUPC := catalogRow("WID-200", "", "849803098135")
	repo := &fakeCatalogRepo{rows: []*types.CatalogRecord{byUPC}}
	svc := NewCatalogService(nil, testLogger(), repo)

	rec, err := svc.ResolveIdentity(context.Background(), "ZZ999999", "0849803098135")
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if rec == nil || rec.ModelNumber != "WID-200" {
		t.Fatalf("resolved %+v, want UPC fallback with padded barcode", rec)
	}
}

func TestResolveIdentityBothPathsAgree(t *testing.T) {
	rec := catalogRow("WID-300", "AB123456", "849803098135")
	repo := &fakeCatalogRepo{rows: []*types.CatalogRecord{rec}}
	svc := NewCatalogService(nil, testLogger(), repo)

	byPCI, err := svc.ResolveIdentity(context.Background(), "AB123456", "")
	if err != nil {
		t.Fatalf("ResolveIdentity pci: %v", err)
	}
	byUPC, err := svc.ResolveIdentity(context.Background(), "", "849803098135")
	if err != nil {
		t.Fatalf("ResolveIdentity upc: %v", err)
	}
	if byPCI == nil || byUPC == nil || byPCI.ModelNumber != byUPC.ModelNumber {
		t.Fatalf("pci and upc paths disagree: %+v vs %+v", byPCI, byUPC)
	}
}

func TestResolveIdentityPrefersNewestRow(t *testing.T) {
	older := catalogRow("WID-100", "AB123456", "")
	older.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := catalogRow("WID-101", "AB123456", "")
	newer.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeCatalogRepo{rows: []*types.CatalogRecord{older, newer}}
	svc := NewCatalogService(nil, testLogger(), repo)

	rec, err := svc.ResolveIdentity(context.Background(), "ab123456", "")
	if err != nil {
		t.Fatalf("ResolveIdentity: %v", err)
	}
	if rec == nil || rec.ModelNumber != "WID-101" {
		t.Fatalf("resolved %+v, want most recently created row", rec)
	}
}

func TestExpandVariantsDropsUnaddressableRows(t *testing.T) {
	withPCI := catalogRow("WID-100", "AB123456", "")
	bookkeeping := catalogRow("WID-100", "", "")
	repo := &fakeCatalogRepo{rows: []*types.CatalogRecord{withPCI, bookkeeping}}
	svc := NewCatalogService(nil, testLogger(), repo)

	variants, err := svc.ExpandVariants(context.Background(), "WID-100")
	if err != nil {
		t.Fatalf("ExpandVariants: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("got %d variants, want exactly the addressable one", len(variants))
	}
	if variants[0].Key != "pci:AB123456" {
		t.Fatalf("variant key = %q", variants[0].Key)
	}
}

func TestExpandVariantsOrdering(t *testing.T) {
	v2 := catalogRow("WID-100", "AB000002", "")
	v2.Version = strPtr("2nd Gen")
	v1 := catalogRow("WID-100", "AB000001", "")
	v1.Version = strPtr("1st Gen")
	noVersion := catalogRow("WID-100", "AB000003", "")
	noVersion.Color = strPtr("Black")
	repo := &fakeCatalogRepo{rows: []*types.CatalogRecord{noVersion, v2, v1}}
	svc := NewCatalogService(nil, testLogger(), repo)

	variants, err := svc.ExpandVariants(context.Background(), "wid-100")
	if err != nil {
		t.Fatalf("ExpandVariants: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("got %d variants", len(variants))
	}
	// Versioned rows first in version order, versionless (nulls) last.
	if variants[0].Version != "1st Gen" || variants[1].Version != "2nd Gen" || variants[2].Version != "" {
		t.Fatalf("ordering wrong: %+v", variants)
	}
}

func TestVariantKeyNormalizesUPC(t *testing.T) {
	if got := VariantKey(strPtr("ab123456"), nil); got != "pci:AB123456" {
		t.Fatalf("pci key = %q", got)
	}
	if got := VariantKey(nil, strPtr("0849803098135")); got != "upc:849803098135" {
		t.Fatalf("padded upc key = %q, want leading zero stripped", got)
	}
	if got := VariantKey(nil, strPtr("849803098135")); got != "upc:849803098135" {
		t.Fatalf("plain upc key = %q", got)
	}
}

func TestVariantLabels(t *testing.T) {
	cases := []struct {
		name string
		rec  *types.CatalogRecord
		want string
	}{
		{
			name: "version_and_color",
			rec: &types.CatalogRecord{
				Version: strPtr("2nd Gen"),
				Color:   strPtr("Black"),
			},
			want: "2nd Gen / Black",
		},
		{
			name: "color_only",
			rec:  &types.CatalogRecord{Color: strPtr("Black")},
			want: "Black",
		},
		{
			name: "freeform_variant_fallback",
			rec:  &types.CatalogRecord{Variant: strPtr("Bundle w/ Case")},
			want: "Bundle w/ Case",
		},
		{
			name: "name_fallback",
			rec:  &types.CatalogRecord{Name: "Widget WID-100"},
			want: "Widget WID-100",
		},
		{
			name: "placeholder",
			rec:  &types.CatalogRecord{},
			want: variantPlaceholderLabel,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := variantLabel(tc.rec); got != tc.want {
				t.Fatalf("variantLabel=%q, want %q", got, tc.want)
			}
		})
	}
}
