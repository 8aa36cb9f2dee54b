// Package calculator provides arithmetic, unit conversion and percentage tools.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Cyclone1070/anu/internal/tool"
)

// SkillName identifies the calculator skill in the catalog.
const SkillName = "calculator"

// New builds the calculator skill.
func New() *tool.Set {
	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "calculate",
			Description: "Perform mathematical calculations (supports +, -, *, /, %, ^, sqrt, sin, cos, tan, log, exp, pi, e)",
			Parameters: tool.Object(map[string]*tool.Schema{
				"expression": tool.String("Mathematical expression to evaluate, e.g. '2 + 3 * 4' or 'sqrt(16)'"),
			}, "expression"),
		}, calculate),
		tool.Typed(tool.Declaration{
			Name:        "convert_units",
			Description: "Convert between units (km/miles, kg/lbs, celsius/fahrenheit, etc.)",
			Parameters: tool.Object(map[string]*tool.Schema{
				"value":     tool.Number("Value to convert"),
				"from_unit": tool.String("Source unit"),
				"to_unit":   tool.String("Target unit"),
			}, "value", "from_unit", "to_unit"),
		}, convertUnits),
		tool.Typed(tool.Declaration{
			Name:        "percentage_calculator",
			Description: "Calculate percentages (what is X% of Y, increase/decrease by X%)",
			Parameters: tool.Object(map[string]*tool.Schema{
				"value":      tool.Number("Base value"),
				"percentage": tool.Number("Percentage value"),
				"operation": {
					Type:        tool.TypeString,
					Description: "'of', 'increase' or 'decrease'",
					Enum:        []string{"of", "increase", "decrease"},
				},
			}, "value", "percentage"),
		}, percentage),
		tool.Typed(tool.Declaration{
			Name:        "tip_calculator",
			Description: "Calculate the tip for a bill and optionally split it",
			Parameters: tool.Object(map[string]*tool.Schema{
				"bill_amount":    tool.Number("Total bill amount"),
				"tip_percentage": tool.Number("Tip percentage, default 15"),
				"split_between":  tool.Integer("Number of people to split between, default 1"),
			}, "bill_amount"),
		}, tip),
	)
}

type calculateRequest struct {
	Expression string `json:"expression"`
}

func (r *calculateRequest) Validate() error {
	if strings.TrimSpace(r.Expression) == "" {
		return ErrEmptyExpression
	}
	return nil
}

func calculate(_ context.Context, req calculateRequest) (tool.Result, error) {
	expr := Normalize(req.Expression)
	v, err := Evaluate(expr)
	if err != nil {
		return tool.Result{}, fmt.Errorf("calculation error: %w", err)
	}
	return tool.OK("%s = %s", expr, FormatNumber(v)), nil
}

type convertRequest struct {
	Value    float64 `json:"value"`
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
}

func convertUnits(_ context.Context, req convertRequest) (tool.Result, error) {
	from := strings.ToLower(strings.TrimSpace(req.FromUnit))
	to := strings.ToLower(strings.TrimSpace(req.ToUnit))

	out, err := Convert(req.Value, from, to)
	if err != nil {
		return tool.Result{}, err
	}

	if isTemperature(from) {
		return tool.OK("%s°%s = %.2f°%s", FormatNumber(req.Value), tempSymbol(from), out, tempSymbol(to)), nil
	}
	return tool.OK("%s %s = %.2f %s", FormatNumber(req.Value), from, out, to), nil
}

type percentageRequest struct {
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
	Operation  string  `json:"operation"`
}

func percentage(_ context.Context, req percentageRequest) (tool.Result, error) {
	v, p := FormatNumber(req.Value), FormatNumber(req.Percentage)
	delta := req.Value * req.Percentage / 100

	switch strings.ToLower(strings.TrimSpace(req.Operation)) {
	case "", "of":
		return tool.OK("%s%% of %s = %s", p, v, FormatNumber(delta)), nil
	case "increase":
		return tool.OK("%s increased by %s%% = %s", v, p, FormatNumber(req.Value+delta)), nil
	case "decrease":
		return tool.OK("%s decreased by %s%% = %s", v, p, FormatNumber(req.Value-delta)), nil
	default:
		return tool.Result{}, errors.New("operation must be 'of', 'increase', or 'decrease'")
	}
}

type tipRequest struct {
	BillAmount    float64  `json:"bill_amount"`
	TipPercentage *float64 `json:"tip_percentage"`
	SplitBetween  int      `json:"split_between"`
}

func (r *tipRequest) Validate() error {
	if r.BillAmount < 0 {
		return errors.New("bill_amount must not be negative")
	}
	if r.SplitBetween < 0 {
		return errors.New("split_between must not be negative")
	}
	return nil
}

func tip(_ context.Context, req tipRequest) (tool.Result, error) {
	pct := 15.0
	if req.TipPercentage != nil {
		pct = *req.TipPercentage
	}
	split := max(req.SplitBetween, 1)

	tipAmount := req.BillAmount * pct / 100
	total := req.BillAmount + tipAmount

	var b strings.Builder
	fmt.Fprintf(&b, "Bill: $%.2f\n", req.BillAmount)
	fmt.Fprintf(&b, "Tip (%s%%): $%.2f\n", FormatNumber(pct), tipAmount)
	fmt.Fprintf(&b, "Total: $%.2f", total)
	if split > 1 {
		fmt.Fprintf(&b, "\nPer person (%d people): $%.2f", split, total/float64(split))
	}
	return tool.OK("%s", b.String()), nil
}

// FormatNumber renders v without float noise: 0.1+0.2 prints as 0.3
// and whole numbers drop their decimal point.
func FormatNumber(v float64) string {
	r := math.Round(v*1e10) / 1e10
	if r == 0 {
		r = 0 // normalise -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
