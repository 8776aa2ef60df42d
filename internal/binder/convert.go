package binder

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// TimeLayout is the fixed format date/time values render with.
const TimeLayout = "2006-01-02 15:04:05"

// DefaultConvert renders a field value into a search-indexable scalar:
// related records reduce to their primary key, timestamps format with
// TimeLayout, everything else falls through to a string conversion.
// Values that cannot be rendered return a *CastError.
func DefaultConvert(field string, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case Keyed:
		return v.PrimaryKey(), nil
	case time.Time:
		return v.Format(TimeLayout), nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return nil, &CastError{Field: field, Value: value, Err: err}
		}
		return string(text), nil
	}

	// Remaining scalar kinds render via strconv. Composite kinds have
	// no flat representation and fail the cast.
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.String:
		return rv.String(), nil
	}

	return nil, &CastError{Field: field, Value: value}
}
