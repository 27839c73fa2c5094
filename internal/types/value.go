package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindText
)

// Value is the closed variant for everything a cell can hold.
// The kind comes from the literal syntax used, never from a declared
// column type.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Text  string
}

func Null() Value            { return Value{Kind: KindNull} }
func NewInt(i int64) Value   { return Value{Kind: KindInt, Int: i} }
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func NewText(s string) Value { return Value{Kind: KindText, Text: s} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Key returns the string an index buckets this value under.
// Integral floats share a bucket with the equal int so that
// WHERE id=1 matches a stored 1.0 and vice versa.
func (v Value) Key() string {
	switch v.Kind {
	case KindInt:
		return "#" + strconv.FormatInt(v.Int, 10)
	case KindFloat:
		if v.Float == math.Trunc(v.Float) && !math.IsInf(v.Float, 0) {
			return "#" + strconv.FormatInt(int64(v.Float), 10)
		}
		return "#" + strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindText:
		return "$" + v.Text
	}
	return "null"
}

// Equal is the engine's only comparison. It must agree with Key so
// index lookups and linear scans select the same rows.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindText:
		return v.Text
	}
	return "NULL"
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindFloat:
		return json.Marshal(v.Float)
	case KindText:
		return json.Marshal(v.Text)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*v = Null()
		return nil
	case strings.HasPrefix(s, `"`):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = NewText(text)
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = NewInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid value literal %q", s)
	}
	*v = NewFloat(f)
	return nil
}

// ParseLiteral turns raw statement text into a Value. It is strictly
// best-effort: unparseable input degrades to a quote-stripped string,
// booleans and None/NULL collapse to null. It never fails.
func ParseLiteral(text string) Value {
	s := strings.TrimSpace(text)
	if s == "" {
		return Null()
	}
	switch strings.ToLower(s) {
	case "null", "none", "true", "false":
		return Null()
	}
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return NewText(s[1 : len(s)-1])
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return NewFloat(f)
	}
	return NewText(strings.Trim(s, "'"))
}
