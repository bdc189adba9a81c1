// Package pagination encodes opaque page tokens for list endpoints.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	offsetTokenKind = "offset"
	DefaultLimit    = 20
	MaxLimit        = 100
)

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// EncodeOffsetToken creates a token pointing at the given position of a
// result set. The filter fingerprint ties the token to the query it was
// issued for.
func EncodeOffsetToken(offset int, fingerprint string) string {
	return EncodeMultiFieldToken(offsetTokenKind, strconv.Itoa(offset), fingerprint)
}

// DecodeOffsetToken returns the offset stored in token. The token must have
// been issued for the same fingerprint.
func DecodeOffsetToken(token string, fingerprint string) (int, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return 0, err
	}
	if len(parts) != 3 || parts[0] != offsetTokenKind {
		return 0, fmt.Errorf("invalid pagination token format (fields)")
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid pagination token format (offset)")
	}
	if parts[2] != fingerprint {
		return 0, fmt.Errorf("pagination token was issued for a different query")
	}
	return offset, nil
}

// NormalizeLimit clamps a requested page size to [1, MaxLimit], using
// DefaultLimit for non-positive values.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Page slices items starting at offset and returns the token for the next
// page, or nil when there is none.
func Page[T any](items []T, offset, limit int, fingerprint string) ([]T, *string) {
	limit = NormalizeLimit(limit)
	if offset >= len(items) {
		return []T{}, nil
	}
	end := offset + limit
	if end >= len(items) {
		return items[offset:], nil
	}
	next := EncodeOffsetToken(end, fingerprint)
	return items[offset:end], &next
}
