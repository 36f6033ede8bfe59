package environment

import (
	"context"
)

// LightBehaviorFunc produces the reading returned by a MockLightSensor.
type LightBehaviorFunc func(ctx context.Context) (float32, error)

// MockLightSensor is a LightSensor for setups without a MAX44009 attached.
//
//	sensor := NewMockLightSensor(func(ctx context.Context) (float32, error) {
//		return 0, fmt.Errorf("sensor malfunction")
//	})
type MockLightSensor struct {
	behavior LightBehaviorFunc
}

var _ LightSensor = &MockLightSensor{}

func NewMockLightSensor(behavior LightBehaviorFunc) *MockLightSensor {
	return &MockLightSensor{
		behavior: behavior,
	}
}

// NewStaticLightSensor returns a mock reporting the same value on every read.
func NewStaticLightSensor(lux float32) *MockLightSensor {
	return NewMockLightSensor(func(ctx context.Context) (float32, error) {
		return lux, nil
	})
}

func (m *MockLightSensor) ReadLux(ctx context.Context) (float32, error) {
	return m.behavior(ctx)
}
