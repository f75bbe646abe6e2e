package ledger

import (
	"errors"
	"math/big"
	"testing"
)

func validCouponFields() []any {
	return []any{
		big.NewInt(7),
		big.NewInt(3),
		"ACM-X92KD41Q",
		big.NewInt(500),
		false,
		true,
		"0x0000000000000000000000000000000000000000",
		"holder@example.com",
		big.NewInt(1700000000),
	}
}

func TestDecodeCouponRecord(t *testing.T) {
	raw, err := DecodeCouponRecord(validCouponFields())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.ID != 7 {
		t.Fatalf("expected id 7, got %d", raw.ID)
	}
	if raw.OrganizationID != 3 {
		t.Fatalf("expected organizationId 3, got %d", raw.OrganizationID)
	}
	if raw.Code != "ACM-X92KD41Q" {
		t.Fatalf("expected code at position 2, got %q", raw.Code)
	}
	if raw.DiscountAmount != 500 {
		t.Fatalf("expected discountAmount 500, got %d", raw.DiscountAmount)
	}
	if raw.IsUsed || !raw.IsActive {
		t.Fatalf("unexpected flags: used=%v active=%v", raw.IsUsed, raw.IsActive)
	}
	if raw.CreatedAt != 1700000000 {
		t.Fatalf("expected createdAt 1700000000, got %d", raw.CreatedAt)
	}
}

func TestDecodeCouponRecordWrongLength(t *testing.T) {
	_, err := DecodeCouponRecord(validCouponFields()[:8])
	if !errors.Is(err, ErrRecordLength) {
		t.Fatalf("expected ErrRecordLength, got %v", err)
	}
}

func TestDecodeCouponRecordWrongFieldType(t *testing.T) {
	fields := validCouponFields()
	fields[3] = "not-a-number"
	_, err := DecodeCouponRecord(fields)
	if !errors.Is(err, ErrRecordField) {
		t.Fatalf("expected ErrRecordField, got %v", err)
	}
}

func TestDecodeOrganizationRecord(t *testing.T) {
	raw, err := DecodeOrganizationRecord([]any{
		big.NewInt(3),
		"Acme Rewards",
		"Loyalty program",
		"0xAbC0000000000000000000000000000000000001",
		true,
		big.NewInt(1690000000),
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw.ID != 3 || raw.Name != "Acme Rewards" || !raw.IsActive {
		t.Fatalf("unexpected record: %+v", raw)
	}
	if raw.AdminAddress != "0xAbC0000000000000000000000000000000000001" {
		t.Fatalf("unexpected admin: %q", raw.AdminAddress)
	}
}

func TestDecodeOrganizationRecordNegativeID(t *testing.T) {
	_, err := DecodeOrganizationRecord([]any{
		big.NewInt(-1), "x", "y", "0xabc", true, big.NewInt(0),
	})
	if !errors.Is(err, ErrRecordField) {
		t.Fatalf("expected ErrRecordField, got %v", err)
	}
}
