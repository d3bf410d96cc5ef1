package service

import "testing"

func TestCalculatePrice_TaxOnDiscountedSubtotal(t *testing.T) {
	result := CalculatePrice(PriceInput{
		BasePriceCents:         10000,
		RegularDiscountPercent: 10,
		TaxPercent:             10,
	})

	if result.SubtotalCents != 10000 {
		t.Fatalf("expected subtotal 10000, got %d", result.SubtotalCents)
	}
	if result.DiscountCents != 1000 {
		t.Fatalf("expected discount 1000, got %d", result.DiscountCents)
	}
	if result.TaxableCents != 9000 {
		t.Fatalf("expected taxable 9000, got %d", result.TaxableCents)
	}
	if result.TaxCents != 900 {
		t.Fatalf("expected tax 900, got %d", result.TaxCents)
	}
	if result.TotalCents != 9900 {
		t.Fatalf("expected total 9900, got %d", result.TotalCents)
	}
}

func TestCalculatePrice_ClampsNegativeSubtotalToZero(t *testing.T) {
	result := CalculatePrice(PriceInput{
		BasePriceCents:           1000,
		PromotionDiscountPercent: 100,
		RegularDiscountPercent:   50,
		TaxPercent:               21,
	})

	if result.TaxableCents != 0 {
		t.Fatalf("expected taxable clamped to 0, got %d", result.TaxableCents)
	}
	if result.TaxCents != 0 {
		t.Fatalf("expected tax 0 on clamped subtotal, got %d", result.TaxCents)
	}
	if result.TotalCents != 0 {
		t.Fatalf("expected total 0, got %d", result.TotalCents)
	}
}

func TestCalculatePrice_CombinesBaseAndPackage(t *testing.T) {
	result := CalculatePrice(PriceInput{
		BasePriceCents:    8000,
		PackagePriceCents: 2000,
		TaxPercent:        10,
	})

	if result.SubtotalCents != 10000 {
		t.Fatalf("expected subtotal 10000, got %d", result.SubtotalCents)
	}
	if result.TotalCents != 11000 {
		t.Fatalf("expected total 11000, got %d", result.TotalCents)
	}
}

func TestCalculatePrice_CombinedDiscountsApplyToSameSubtotal(t *testing.T) {
	result := CalculatePrice(PriceInput{
		BasePriceCents:           10000,
		PromotionDiscountPercent: 10,
		RegularDiscountPercent:   5,
		TaxPercent:               0,
	})

	// 15% off 10000, not 5% off the promotion-discounted amount.
	if result.DiscountCents != 1500 {
		t.Fatalf("expected discount 1500, got %d", result.DiscountCents)
	}
	if result.TotalCents != 8500 {
		t.Fatalf("expected total 8500, got %d", result.TotalCents)
	}
}
