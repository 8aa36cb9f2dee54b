package calculator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"addition", "2 + 3", 5},
		{"precedence", "2 + 3 * 4", 14},
		{"parentheses", "(2 + 3) * 4", 20},
		{"unary minus", "-5 + 2", -3},
		{"double negation", "--4", 4},
		{"modulo", "10 % 3", 1},
		{"power right assoc", "2 ^ 3 ^ 2", 512},
		{"negative exponent", "2 ^ -1", 0.5},
		{"unary binds looser than power", "-2 ^ 2", -4},
		{"sqrt", "sqrt(16)", 4},
		{"pow", "pow(2, 10)", 1024},
		{"nested functions", "abs(round(-2.6))", 3},
		{"constant", "round(pi * 100)", 314},
		{"decimal", "1.5 * 2", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"division by zero", "1 / 0"},
		{"unknown identifier", "foo + 1"},
		{"unbalanced", "(1 + 2"},
		{"trailing operator", "1 +"},
		{"bad character", "1 & 2"},
		{"wrong arity", "sqrt(1, 2)"},
		{"negative sqrt", "sqrt(-1)"},
		{"no builtins", "__import__(os)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			assert.Error(t, err)
		})
	}
}

func TestEvaluate_DivisionByZeroSentinel(t *testing.T) {
	_, err := Evaluate("4 / (2 - 2)")
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestEvaluate_Limits(t *testing.T) {
	v, err := Evaluate(strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40))
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	_, err = Evaluate(strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100))
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	_, err = Evaluate(strings.Repeat("-", 200) + "1")
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	_, err = Evaluate(strings.Repeat("1+", 600) + "1")
	assert.ErrorIs(t, err, ErrExpressionTooLong)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "5+3", Normalize("5 plus 3"))
	assert.Equal(t, "10*4", Normalize("10 multiplied by 4"))
	assert.Equal(t, "9^2", Normalize("9 squared"))
	assert.Equal(t, "2^8", Normalize("2 to the power of 8"))
	assert.Equal(t, "2^3", Normalize("2**3"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0.3", FormatNumber(0.1+0.2))
	assert.Equal(t, "5", FormatNumber(5))
	assert.Equal(t, "0", FormatNumber(-0.0))
	assert.Equal(t, "-2.5", FormatNumber(-2.5))
}

func decodeResult(t *testing.T, out string) map[string]string {
	t.Helper()
	var res map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res
}

func TestSkill_Calculate(t *testing.T) {
	s := New()

	out, err := s.Dispatch(context.Background(), "calculate", map[string]any{"expression": "5 plus 3"})

	require.NoError(t, err)
	res := decodeResult(t, out)
	assert.Equal(t, "success", res["status"])
	assert.Equal(t, "5+3 = 8", res["message"])
}

func TestSkill_CalculateError(t *testing.T) {
	s := New()

	_, err := s.Dispatch(context.Background(), "calculate", map[string]any{"expression": "1/0"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Contains(t, err.Error(), "calculation error")
}

func TestSkill_ConvertUnits(t *testing.T) {
	s := New()

	tests := []struct {
		args map[string]any
		want string
	}{
		{map[string]any{"value": 10.0, "from_unit": "km", "to_unit": "miles"}, "10 km = 6.21 miles"},
		{map[string]any{"value": 100.0, "from_unit": "Celsius", "to_unit": "fahrenheit"}, "100°C = 212.00°F"},
		{map[string]any{"value": 1.0, "from_unit": "kg", "to_unit": "lbs"}, "1 kg = 2.20 lbs"},
	}
	for _, tt := range tests {
		out, err := s.Dispatch(context.Background(), "convert_units", tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, decodeResult(t, out)["message"])
	}
}

func TestSkill_ConvertUnitsIncompatible(t *testing.T) {
	s := New()

	_, err := s.Dispatch(context.Background(), "convert_units",
		map[string]any{"value": 1.0, "from_unit": "kg", "to_unit": "km"})

	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestSkill_Percentage(t *testing.T) {
	s := New()

	out, err := s.Dispatch(context.Background(), "percentage_calculator",
		map[string]any{"value": 200.0, "percentage": 15.0})
	require.NoError(t, err)
	assert.Equal(t, "15% of 200 = 30", decodeResult(t, out)["message"])

	out, err = s.Dispatch(context.Background(), "percentage_calculator",
		map[string]any{"value": 200.0, "percentage": 10.0, "operation": "decrease"})
	require.NoError(t, err)
	assert.Equal(t, "200 decreased by 10% = 180", decodeResult(t, out)["message"])

	_, err = s.Dispatch(context.Background(), "percentage_calculator",
		map[string]any{"value": 1.0, "percentage": 1.0, "operation": "double"})
	assert.Error(t, err)
}

func TestSkill_Tip(t *testing.T) {
	s := New()

	out, err := s.Dispatch(context.Background(), "tip_calculator",
		map[string]any{"bill_amount": 100.0, "split_between": 4})

	require.NoError(t, err)
	msg := decodeResult(t, out)["message"]
	assert.Contains(t, msg, "Tip (15%): $15.00")
	assert.Contains(t, msg, "Total: $115.00")
	assert.Contains(t, msg, "Per person (4 people): $28.75")
}

func TestConvert_Kelvin(t *testing.T) {
	got, err := Convert(0, "c", "k")
	require.NoError(t, err)
	assert.InDelta(t, 273.15, got, 1e-9)
}
