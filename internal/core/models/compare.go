package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
)

// CompareValues orders two attribute values. Nulls sort first; numbers compare
// numerically; strings compare case-insensitively; records compare by display label.
func CompareValues(a, b any) int {
	if IsNilRecord(a) || IsNilRecord(b) {
		switch {
		case IsNilRecord(a) && IsNilRecord(b):
			return 0
		case IsNilRecord(a):
			return -1
		default:
			return 1
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	switch ta := a.(type) {
	case bool:
		if tb, ok := b.(bool); ok {
			return compareBool(ta, tb)
		}
	case time.Time:
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	case uuid.UUID:
		if tb, ok := b.(uuid.UUID); ok {
			return strings.Compare(ta.String(), tb.String())
		}
	}
	return strings.Compare(strings.ToLower(stringOf(a)), strings.ToLower(stringOf(b)))
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func stringOf(v any) string {
	if r, ok := v.(Record); ok {
		return Display(r)
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
