package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// FallbackColor is used for categories the backend sends no color for.
const FallbackColor = "#8884d8"

var monthAbbrevs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

type (
	// AmountMap is a JSON object of name to amount that keeps the key order it was decoded in.
	AmountMap struct {
		Keys   []string
		Values map[string]decimal.Decimal
	}

	// Breakdown is the per-category totals of one month.
	Breakdown struct {
		Month     string            `json:"month"`
		Breakdown AmountMap         `json:"breakdown"`
		Colors    map[string]string `json:"colors"`
	}

	// Trend is the per-month totals of one year, keyed by month number.
	// The backend sends only the mapping; Year is the year that was asked for.
	Trend struct {
		Year  int
		Trend AmountMap
	}

	// CategorySlice is one chart slice.
	CategorySlice struct {
		Name    string
		Value   decimal.Decimal
		Color   string
		Percent float64
	}

	// MonthAmount is one point of the yearly trend.
	MonthAmount struct {
		Name    string
		Amount  decimal.Decimal
		Percent float64
	}
)

func (m *AmountMap) UnmarshalJSON(b []byte) error {
	m.Keys = nil
	m.Values = map[string]decimal.Decimal{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("amount map: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("amount map: unexpected key %v", tok)
		}
		var v decimal.Decimal
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("amount map %q: %w", key, err)
		}
		if _, seen := m.Values[key]; !seen {
			m.Keys = append(m.Keys, key)
		}
		m.Values[key] = v
	}
	_, err = dec.Token()
	return err
}

func (m AmountMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.WriteString(m.Values[k].String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewAmountMap builds an AmountMap from ordered pairs, useful for fixtures.
func NewAmountMap(pairs ...any) AmountMap {
	m := AmountMap{Values: map[string]decimal.Decimal{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		k := fmt.Sprint(pairs[i])
		var v decimal.Decimal
		switch x := pairs[i+1].(type) {
		case decimal.Decimal:
			v = x
		case int:
			v = decimal.NewFromInt(int64(x))
		case float64:
			v = decimal.NewFromFloat(x)
		case string:
			v, _ = decimal.NewFromString(x)
		}
		if _, seen := m.Values[k]; !seen {
			m.Keys = append(m.Keys, k)
		}
		m.Values[k] = v
	}
	return m
}

// ReshapeBreakdown turns the breakdown mapping into chart slices in backend order.
func ReshapeBreakdown(b Breakdown) []CategorySlice {
	out := make([]CategorySlice, 0, len(b.Breakdown.Keys))
	total := decimal.Zero
	for _, name := range b.Breakdown.Keys {
		total = total.Add(b.Breakdown.Values[name])
	}
	for _, name := range b.Breakdown.Keys {
		color, ok := b.Colors[name]
		if !ok || color == "" {
			color = FallbackColor
		}
		v := b.Breakdown.Values[name]
		out = append(out, CategorySlice{
			Name:    name,
			Value:   v,
			Color:   color,
			Percent: percentOf(v, total),
		})
	}
	return out
}

// ReshapeTrend turns the month-number mapping into month points ordered Jan..Dec.
// Keys outside 1..12 are ignored.
func ReshapeTrend(t Trend) []MonthAmount {
	type point struct {
		month  int
		amount decimal.Decimal
	}
	points := make([]point, 0, len(t.Trend.Keys))
	for _, k := range t.Trend.Keys {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 || n > 12 {
			continue
		}
		points = append(points, point{month: n, amount: t.Trend.Values[k]})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].month < points[j].month })

	peak := decimal.Zero
	for _, p := range points {
		if p.amount.GreaterThan(peak) {
			peak = p.amount
		}
	}
	out := make([]MonthAmount, 0, len(points))
	for _, p := range points {
		out = append(out, MonthAmount{
			Name:    monthAbbrevs[p.month-1],
			Amount:  p.amount,
			Percent: percentOf(p.amount, peak),
		})
	}
	return out
}

func percentOf(v, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return v.Div(whole).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}
