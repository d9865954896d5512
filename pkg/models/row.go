package models

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"
)

// Row is a single record as returned by the store. Columns keeps the order the
// store returned them in so the JSON document reads like the table.
type Row struct {
	Columns []string
	Values  map[string]any
}

// NewRow builds a row from a column list and the matching scanned values.
// A column repeated in the result set keeps its first position and last value.
func NewRow(columns []string, values []any) Row {
	row := Row{
		Columns: make([]string, 0, len(columns)),
		Values:  make(map[string]any, len(columns)),
	}
	for i, column := range columns {
		var value any
		if i < len(values) {
			value = values[i]
		}
		row.Set(column, value)
	}
	return row
}

// RowOf builds a row from alternating column/value pairs.
func RowOf(pairs ...any) Row {
	row := Row{Values: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		row.Set(fmt.Sprint(pairs[i]), pairs[i+1])
	}
	return row
}

// Get returns the value of a column and whether the column exists.
func (r Row) Get(column string) (any, bool) {
	value, ok := r.Values[column]
	return value, ok
}

// Set assigns a column value, appending the column when it is new.
func (r *Row) Set(column string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, ok := r.Values[column]; !ok {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

// Clone returns a shallow copy that can be modified without touching r.
func (r Row) Clone() Row {
	clone := Row{
		Columns: make([]string, len(r.Columns)),
		Values:  make(map[string]any, len(r.Values)),
	}
	copy(clone.Columns, r.Columns)
	for k, v := range r.Values {
		clone.Values[k] = v
	}
	return clone
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, column := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(column)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(r.Values[column])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", column, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NormalizeValue converts driver specific scan results into JSON friendly values.
// Drivers hand back text, decimal and money columns as raw bytes; those become
// strings. Binary values that are not valid UTF-8 become standard base64, the
// same text encoding/json gives a []byte.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case []byte:
		if v == nil {
			return nil
		}
		return bytesText(v)
	case time.Time:
		return v.UTC()
	default:
		return v
	}
}

func bytesText(v []byte) string {
	if utf8.Valid(v) {
		return string(v)
	}
	return base64.StdEncoding.EncodeToString(v)
}

// Key is the normalized form of an id or foreign key used for joins, so that
// an int32 1, an int64 1 and the string "1" all land on the same entry.
// Values that are neither text nor numbers are tagged with their type and
// never equal a string key.
type Key string

// KeyOf normalizes a column value into a Key. NULL is never a key.
func KeyOf(value any) (Key, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return Key(v), true
	case []byte:
		if v == nil {
			return "", false
		}
		return Key(bytesText(v)), true
	case bool:
		return typedKey("bool", strconv.FormatBool(v)), true
	case int:
		return Key(strconv.FormatInt(int64(v), 10)), true
	case int8:
		return Key(strconv.FormatInt(int64(v), 10)), true
	case int16:
		return Key(strconv.FormatInt(int64(v), 10)), true
	case int32:
		return Key(strconv.FormatInt(int64(v), 10)), true
	case int64:
		return Key(strconv.FormatInt(v, 10)), true
	case uint:
		return Key(strconv.FormatUint(uint64(v), 10)), true
	case uint8:
		return Key(strconv.FormatUint(uint64(v), 10)), true
	case uint16:
		return Key(strconv.FormatUint(uint64(v), 10)), true
	case uint32:
		return Key(strconv.FormatUint(uint64(v), 10)), true
	case uint64:
		return Key(strconv.FormatUint(v, 10)), true
	case float32:
		return floatKey(float64(v), 32)
	case float64:
		return floatKey(v, 64)
	case json.Number:
		return Key(v.String()), true
	case fmt.Stringer:
		return typedKey(fmt.Sprintf("%T", v), v.String()), true
	default:
		return typedKey(fmt.Sprintf("%T", v), fmt.Sprint(v)), true
	}
}

func typedKey(kind, text string) Key {
	return Key("\x00" + kind + ":" + text)
}

func floatKey(v float64, bitSize int) (Key, bool) {
	if math.IsNaN(v) {
		return "", false
	}
	return Key(strconv.FormatFloat(v, 'f', -1, bitSize)), true
}
