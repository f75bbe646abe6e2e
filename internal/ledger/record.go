package ledger

import (
	"errors"
	"fmt"
	"math/big"
)

// The contract returns fixed-order positional tuples. The field order below is
// canonical for this codebase; it is decoded in exactly one place per record
// kind so no call site ever indexes a raw tuple directly.
//
// Verified against the deployed contract schema:
//
//	getOrganization(id) -> (id, name, description, admin, isActive, createdAt)
//	getCoupon(id)       -> (id, organizationId, code, discountAmount,
//	                        isUsed, isActive, ownerWallet, ownerEmail, createdAt)

const (
	organizationRecordLen = 6
	couponRecordLen       = 9
)

var (
	ErrRecordLength = errors.New("ledger_record_length")
	ErrRecordField  = errors.New("ledger_record_field")
)

// RawOrganization is a decoded organization record, still in ledger-native
// types. Derivation of display fields happens in the normalizer.
type RawOrganization struct {
	ID           uint64
	Name         string
	Description  string
	AdminAddress string
	IsActive     bool
	CreatedAt    int64
}

// RawCoupon is a decoded coupon record in ledger-native types.
type RawCoupon struct {
	ID             uint64
	OrganizationID uint64
	Code           string
	DiscountAmount uint64
	IsUsed         bool
	IsActive       bool
	OwnerWallet    string
	OwnerEmail     string
	CreatedAt      int64
}

// DecodeOrganizationRecord validates and decodes a positional organization
// tuple.
func DecodeOrganizationRecord(fields []any) (RawOrganization, error) {
	if len(fields) != organizationRecordLen {
		return RawOrganization{}, fmt.Errorf("%w: organization record has %d fields, want %d", ErrRecordLength, len(fields), organizationRecordLen)
	}

	var (
		raw RawOrganization
		err error
	)
	if raw.ID, err = recordUint(fields, 0, "id"); err != nil {
		return RawOrganization{}, err
	}
	if raw.Name, err = recordString(fields, 1, "name"); err != nil {
		return RawOrganization{}, err
	}
	if raw.Description, err = recordString(fields, 2, "description"); err != nil {
		return RawOrganization{}, err
	}
	if raw.AdminAddress, err = recordAddress(fields, 3, "admin"); err != nil {
		return RawOrganization{}, err
	}
	if raw.IsActive, err = recordBool(fields, 4, "isActive"); err != nil {
		return RawOrganization{}, err
	}
	if raw.CreatedAt, err = recordTimestamp(fields, 5, "createdAt"); err != nil {
		return RawOrganization{}, err
	}
	return raw, nil
}

// DecodeCouponRecord validates and decodes a positional coupon tuple.
func DecodeCouponRecord(fields []any) (RawCoupon, error) {
	if len(fields) != couponRecordLen {
		return RawCoupon{}, fmt.Errorf("%w: coupon record has %d fields, want %d", ErrRecordLength, len(fields), couponRecordLen)
	}

	var (
		raw RawCoupon
		err error
	)
	if raw.ID, err = recordUint(fields, 0, "id"); err != nil {
		return RawCoupon{}, err
	}
	if raw.OrganizationID, err = recordUint(fields, 1, "organizationId"); err != nil {
		return RawCoupon{}, err
	}
	if raw.Code, err = recordString(fields, 2, "code"); err != nil {
		return RawCoupon{}, err
	}
	if raw.DiscountAmount, err = recordUint(fields, 3, "discountAmount"); err != nil {
		return RawCoupon{}, err
	}
	if raw.IsUsed, err = recordBool(fields, 4, "isUsed"); err != nil {
		return RawCoupon{}, err
	}
	if raw.IsActive, err = recordBool(fields, 5, "isActive"); err != nil {
		return RawCoupon{}, err
	}
	if raw.OwnerWallet, err = recordAddress(fields, 6, "ownerWallet"); err != nil {
		return RawCoupon{}, err
	}
	if raw.OwnerEmail, err = recordString(fields, 7, "ownerEmail"); err != nil {
		return RawCoupon{}, err
	}
	if raw.CreatedAt, err = recordTimestamp(fields, 8, "createdAt"); err != nil {
		return RawCoupon{}, err
	}
	return raw, nil
}

func recordUint(fields []any, idx int, name string) (uint64, error) {
	switch v := fields[idx].(type) {
	case *big.Int:
		if v == nil || v.Sign() < 0 || !v.IsUint64() {
			return 0, fieldError(idx, name, fields[idx])
		}
		return v.Uint64(), nil
	case uint64:
		return v, nil
	default:
		return 0, fieldError(idx, name, fields[idx])
	}
}

func recordTimestamp(fields []any, idx int, name string) (int64, error) {
	v, err := recordUint(fields, idx, name)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

func recordString(fields []any, idx int, name string) (string, error) {
	v, ok := fields[idx].(string)
	if !ok {
		return "", fieldError(idx, name, fields[idx])
	}
	return v, nil
}

func recordBool(fields []any, idx int, name string) (bool, error) {
	v, ok := fields[idx].(bool)
	if !ok {
		return false, fieldError(idx, name, fields[idx])
	}
	return v, nil
}

// recordAddress accepts either a plain string or a fmt.Stringer (the EVM
// backend yields common.Address values).
func recordAddress(fields []any, idx int, name string) (string, error) {
	switch v := fields[idx].(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fieldError(idx, name, fields[idx])
	}
}

func fieldError(idx int, name string, value any) error {
	return fmt.Errorf("%w: field %d (%s) has unexpected type %T", ErrRecordField, idx, name, value)
}
