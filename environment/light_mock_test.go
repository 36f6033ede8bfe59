package environment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLightSensor_StaticValue(t *testing.T) {
	sensor := NewStaticLightSensor(500)
	lux, err := sensor.ReadLux(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float32(500), lux)
}

func TestMockLightSensor_DynamicBehavior(t *testing.T) {
	callCount := 0
	sensor := NewMockLightSensor(func(ctx context.Context) (float32, error) {
		callCount++
		return float32(callCount) * 100, nil
	})

	ctx := context.Background()
	lux1, err := sensor.ReadLux(ctx)
	require.NoError(t, err)
	assert.Equal(t, float32(100), lux1)

	lux2, err := sensor.ReadLux(ctx)
	require.NoError(t, err)
	assert.Equal(t, float32(200), lux2)
}

func TestMockLightSensor_ErrorHandling(t *testing.T) {
	sensor := NewMockLightSensor(func(ctx context.Context) (float32, error) {
		return 0, fmt.Errorf("sensor malfunction")
	})

	_, err := sensor.ReadLux(context.Background())
	assert.EqualError(t, err, "sensor malfunction")
}

func TestMockLightSensor_ContextUsage(t *testing.T) {
	var receivedCtx context.Context
	sensor := NewMockLightSensor(func(ctx context.Context) (float32, error) {
		receivedCtx = ctx
		return 1000, nil
	})

	type contextKey string
	key := contextKey("test")
	ctx := context.WithValue(context.Background(), key, "test-value")

	_, err := sensor.ReadLux(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test-value", receivedCtx.Value(key))
}

func TestMockLightSensor_EnvironmentalSimulation(t *testing.T) {
	hourOfDay := 0
	sensor := NewMockLightSensor(func(ctx context.Context) (float32, error) {
		switch {
		case hourOfDay >= 6 && hourOfDay < 8: // dawn
			return 250, nil
		case hourOfDay >= 8 && hourOfDay < 18:
			return 10000, nil
		case hourOfDay >= 18 && hourOfDay < 20: // dusk
			return 250, nil
		default:
			return 0.045, nil
		}
	})

	tests := []struct {
		hour     int
		expected float32
	}{
		{0, 0.045},
		{7, 250},
		{12, 10000},
		{19, 250},
		{23, 0.045},
	}
	for _, tc := range tests {
		hourOfDay = tc.hour
		lux, err := sensor.ReadLux(context.Background())
		require.NoError(t, err, "hour %d", tc.hour)
		assert.Equal(t, tc.expected, lux, "hour %d", tc.hour)
	}
}
