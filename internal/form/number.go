package form

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vitemonmedoc/medoc/internal/model"
)

// ParseNumber reads a locale-formatted decimal ("70,5" or "70.5"). Blank input
// is nil so it serializes as null.
func ParseNumber(raw string) (*model.Number, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", raw)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%q is out of range", raw)
	}
	n := model.Number(f)
	return &n, nil
}
