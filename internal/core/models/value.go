package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/pkg/types"
)

// StringValue renders a scalar attribute in the canonical form used by natural keys and
// lookups. The boolean is false for null values.
func StringValue(v any) (string, bool) {
	switch tv := v.(type) {
	case nil:
		return "", false
	case string:
		return tv, true
	case *string:
		if tv == nil {
			return "", false
		}
		return *tv, true
	case bool:
		if tv {
			return "True", true
		}
		return "False", true
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), true
	case uuid.UUID:
		return tv.String(), true
	case time.Time:
		return tv.Format(time.RFC3339), true
	case types.NullableString:
		return tv.Value, !tv.IsNil()
	case types.Nullable:
		if tv.IsNil() {
			return "", false
		}
		return fmt.Sprint(v), true
	case fmt.Stringer:
		if IsNilRecord(v) {
			return "", false
		}
		return tv.String(), true
	case Record:
		if IsNilRecord(tv) {
			return "", false
		}
		return Display(tv), true
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return fmt.Sprint(v), true
}
