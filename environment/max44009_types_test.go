package environment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationTime_Text(t *testing.T) {
	tests := []struct {
		it       IntegrationTime
		text     string
		duration time.Duration
	}{
		{IntegrationTime800ms, "800ms", 800 * time.Millisecond},
		{IntegrationTime400ms, "400ms", 400 * time.Millisecond},
		{IntegrationTime200ms, "200ms", 200 * time.Millisecond},
		{IntegrationTime100ms, "100ms", 100 * time.Millisecond},
		{IntegrationTime50ms, "50ms", 50 * time.Millisecond},
		{IntegrationTime25ms, "25ms", 25 * time.Millisecond},
		{IntegrationTime12_5ms, "12.5ms", 12500 * time.Microsecond},
		{IntegrationTime6_25ms, "6.25ms", 6250 * time.Microsecond},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.it.String())
			assert.Equal(t, tt.duration, tt.it.Duration())
			parsed, err := ParseIntegrationTime(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.it, parsed)
			// the duration text form is what time.Duration prints
			assert.Equal(t, tt.text, tt.duration.String())
		})
	}
	_, err := ParseIntegrationTime("1s")
	assert.ErrorIs(t, err, ErrUnknownSetting)
	assert.Equal(t, "IntegrationTime(9)", IntegrationTime(9).String())
	assert.Equal(t, time.Duration(0), IntegrationTime(9).Duration())
}

func TestModes_Text(t *testing.T) {
	var mm MeasurementMode
	require.NoError(t, mm.UnmarshalText([]byte("continuous")))
	assert.Equal(t, MeasurementModeContinuous, mm)
	assert.Error(t, mm.UnmarshalText([]byte("never")))
	assert.Equal(t, MeasurementModeContinuous, mm)

	var cm ConfigurationMode
	require.NoError(t, cm.UnmarshalText([]byte("manual")))
	assert.Equal(t, ConfigurationModeManual, cm)
	text, err := cm.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "manual", string(text))

	var cdr CurrentDivisionRatio
	require.NoError(t, cdr.UnmarshalText([]byte("1/8")))
	assert.Equal(t, CurrentDivisionRatioOneEighth, cdr)
	assert.Equal(t, "1/8", cdr.String())
	_, err = ParseCurrentDivisionRatio("1/2")
	assert.ErrorIs(t, err, ErrUnknownSetting)

	for _, s := range []string{"automatic", "auto"} {
		parsed, err := ParseConfigurationMode(s)
		require.NoError(t, err)
		assert.Equal(t, ConfigurationModeAutomatic, parsed)
	}
	assert.Equal(t, "once-every-800ms", MeasurementModeOnceEvery800ms.String())
}
