package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonal_CoversEveryMonth(t *testing.T) {
	for month := 1; month <= 12; month++ {
		date := time.Date(2025, time.Month(month), 15, 0, 0, 0, 0, time.UTC)
		insights := Seasonal(date)
		require.NotEmpty(t, insights, "month %d", month)
		for _, s := range insights {
			assert.NotEmpty(t, s)
		}
	}
}

func TestSeasonal_RainySeasonMessaging(t *testing.T) {
	june := Seasonal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, june[0], "Rainy season")

	april := Seasonal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, april[0], "Summer")
}

func TestSeasonal_Deterministic(t *testing.T) {
	date := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Seasonal(date), Seasonal(date))
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewGenerator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "test-key")
	g, err := NewGenerator()
	require.NoError(t, err)
	assert.NotNil(t, g)
}
