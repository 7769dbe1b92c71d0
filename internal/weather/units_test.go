package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplayTemperature(t *testing.T) {
	for _, c := range []float64{-40, -17.5, 0, 21.3, 37, 100} {
		assert.Equal(t, c, ToDisplayTemperature(c, true))
		assert.InDelta(t, c*9/5+32, ToDisplayTemperature(c, false), 1e-9)
	}

	assert.InDelta(t, 212.0, ToDisplayTemperature(100, false), 1e-9)
	assert.InDelta(t, -40.0, ToDisplayTemperature(-40, false), 1e-9)
}

func TestUnitDisplayRounds(t *testing.T) {
	assert.Equal(t, 22, Celsius.Display(21.6))
	assert.Equal(t, 71, Fahrenheit.Display(21.6)) // 70.88
	assert.Equal(t, "°C", Celsius.Symbol())
	assert.Equal(t, "°F", Fahrenheit.Symbol())
}

func TestUnitToggleAndParse(t *testing.T) {
	assert.Equal(t, Fahrenheit, Celsius.Toggle())
	assert.Equal(t, Celsius, Fahrenheit.Toggle())

	u, err := ParseUnit("f")
	require.NoError(t, err)
	assert.Equal(t, Fahrenheit, u)

	_, err = ParseUnit("kelvin")
	assert.Error(t, err)
}

func TestTheme(t *testing.T) {
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())

	_, err := ParseTheme("sepia")
	assert.Error(t, err)
}
