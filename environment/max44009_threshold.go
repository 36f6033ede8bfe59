package environment

import (
	"context"
	"math"
	"time"
)

// Threshold registers hold a 4-bit exponent and the 4 most significant bits of the
// 8-bit mantissa. The upper threshold is compared against mantissa<<4|0x0F, the
// lower one against mantissa<<4.
const (
	thresholdMaxExponent = 14
	thresholdTimerStep   = 100 * time.Millisecond
)

// SetUpperThreshold sets the lux level above which the interrupt fires.
func (s *MAX44009) SetUpperThreshold(ctx context.Context, lux float32) error {
	return s.write(ctx, max44009RegUpperThreshold, encodeThreshold(lux))
}

// SetLowerThreshold sets the lux level below which the interrupt fires.
func (s *MAX44009) SetLowerThreshold(ctx context.Context, lux float32) error {
	return s.write(ctx, max44009RegLowerThreshold, encodeThreshold(lux))
}

func (s *MAX44009) ReadUpperThreshold(ctx context.Context) (float32, error) {
	data, err := s.readRegister(ctx, max44009RegUpperThreshold)
	if err != nil {
		return 0, err
	}
	return decodeUpperThreshold(data), nil
}

func (s *MAX44009) ReadLowerThreshold(ctx context.Context) (float32, error) {
	data, err := s.readRegister(ctx, max44009RegLowerThreshold)
	if err != nil {
		return 0, err
	}
	return decodeLowerThreshold(data), nil
}

// SetThresholdTimer sets how long the reading has to stay outside the threshold
// window before the interrupt fires. The device counts in 100ms steps up to 25.5s.
func (s *MAX44009) SetThresholdTimer(ctx context.Context, d time.Duration) error {
	return s.write(ctx, max44009RegThresholdTimer, encodeThresholdTimer(d))
}

func (s *MAX44009) ReadThresholdTimer(ctx context.Context) (time.Duration, error) {
	data, err := s.readRegister(ctx, max44009RegThresholdTimer)
	if err != nil {
		return 0, err
	}
	return time.Duration(data) * thresholdTimerStep, nil
}

func encodeThreshold(lux float32) byte {
	if lux <= 0 || math.IsNaN(float64(lux)) {
		return 0
	}
	counts := math.Round(float64(lux) / max44009LuxResolution)
	for exp := 0; exp <= thresholdMaxExponent; exp++ {
		mantissa := counts / float64(uint32(1)<<exp)
		if mantissa <= 0xFF {
			return byte(exp)<<4 | byte(uint8(mantissa)>>4)
		}
	}
	return thresholdMaxExponent<<4 | 0x0F
}

func decodeUpperThreshold(data byte) float32 {
	return convertLux(data, 0x0F)
}

func decodeLowerThreshold(data byte) float32 {
	return convertLux(data, 0x00)
}

func encodeThresholdTimer(d time.Duration) byte {
	if d <= 0 {
		return 0
	}
	steps := d / thresholdTimerStep
	if steps > 0xFF {
		return 0xFF
	}
	return byte(steps)
}
