package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/ambientlight/adapter"
	"github.com/mklimuk/ambientlight/cmd/ambientlight/console"
	"github.com/mklimuk/ambientlight/environment"
	"github.com/mklimuk/ambientlight/pkg/config"
)

var lightCmd = cli.Command{
	Name:  "light",
	Usage: "MAX44009 ambient light sensor",
	Subcommands: []*cli.Command{
		&lightReadCmd,
		&lightConfigureCmd,
		&lightStatusCmd,
		&lightThresholdCmd,
		&lightInterruptCmd,
	},
}

var lightReadCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read illuminance",
	Flags: sensorFlags(
		&cli.Float64Flag{
			Name:  "mock-lux",
			Value: 250,
			Usage: "value reported by the mock adapter",
		},
	),
	Action: func(c *cli.Context) error {
		ctx := commandContext(c)
		conf, err := loadConfig(c)
		if err != nil {
			return console.Fail("configuration error", err)
		}
		var sensor environment.LightSensor
		switch conf.Adapter {
		case config.AdapterMock:
			sensor = environment.NewStaticLightSensor(float32(c.Float64("mock-lux")))
		default:
			s, release, err := openSensor(conf)
			if err != nil {
				return console.Fail("adapter initialization error", err)
			}
			defer release()
			sensor = s
		}
		lux, err := sensor.ReadLux(ctx)
		if err != nil {
			return console.Fail("error getting light sensor read", err)
		}
		console.PInfof(console.PictoBulb, "%s lux", console.White(fmt.Sprintf("%.3f", lux)))
		return nil
	},
}

var lightConfigureCmd = cli.Command{
	Name:  "configure",
	Usage: "write measurement settings; flags override the profile from --config",
	Flags: sensorFlags(
		&cli.StringFlag{
			Name:  "measurement-mode",
			Usage: "once-every-800ms or continuous",
		},
		&cli.StringFlag{
			Name:  "configuration-mode",
			Usage: "automatic or manual",
		},
		&cli.StringFlag{
			Name:  "integration-time",
			Usage: "800ms, 400ms, 200ms, 100ms, 50ms, 25ms, 12.5ms or 6.25ms (manual mode)",
		},
		&cli.StringFlag{
			Name:  "cdr",
			Usage: "current division ratio: 1 or 1/8 (manual mode)",
		},
		&cli.BoolFlag{
			Name:  "interrupt",
			Usage: "enable the threshold interrupt",
		},
	),
	Action: func(c *cli.Context) error {
		ctx := commandContext(c)
		conf, err := loadConfig(c)
		if err != nil {
			return console.Fail("configuration error", err)
		}
		settings, err := settingsFromFlags(c, conf.Settings)
		if err != nil {
			return console.Fail("invalid settings", err)
		}
		return withSensor(conf, func(s *environment.MAX44009) error {
			err := s.Configure(ctx, settings)
			if err != nil {
				return console.Fail("error configuring sensor", err)
			}
			slog.InfoContext(ctx, "sensor configured", "addr", fmt.Sprintf("%#x", s.Addr()), "config", fmt.Sprintf("%08b", s.Config()))
			return printYAML(settings)
		})
	},
}

type lightStatus struct {
	Address          string               `yaml:"address"`
	Lux              float32              `yaml:"lux"`
	Settings         environment.Settings `yaml:"settings"`
	InterruptPending bool                 `yaml:"interrupt_pending"`
	UpperThreshold   float32              `yaml:"upper_threshold"`
	LowerThreshold   float32              `yaml:"lower_threshold"`
	ThresholdTimer   time.Duration        `yaml:"threshold_timer"`
}

var lightStatusCmd = cli.Command{
	Name:  "status",
	Usage: "dump sensor registers",
	Flags: sensorFlags(),
	Action: func(c *cli.Context) error {
		ctx := commandContext(c)
		conf, err := loadConfig(c)
		if err != nil {
			return console.Fail("configuration error", err)
		}
		return withSensor(conf, func(s *environment.MAX44009) error {
			status, err := readStatus(ctx, s)
			if err != nil {
				return console.Fail("error reading sensor status", err)
			}
			return printYAML(status)
		})
	},
}

var lightThresholdCmd = cli.Command{
	Name:  "threshold",
	Usage: "set the interrupt threshold window",
	Flags: sensorFlags(
		&cli.Float64Flag{
			Name:  "upper",
			Usage: "upper threshold in lux",
		},
		&cli.Float64Flag{
			Name:  "lower",
			Usage: "lower threshold in lux",
		},
		&cli.DurationFlag{
			Name:  "timer",
			Usage: "time outside the window before the interrupt fires (100ms steps)",
		},
	),
	Action: func(c *cli.Context) error {
		ctx := commandContext(c)
		conf, err := loadConfig(c)
		if err != nil {
			return console.Fail("configuration error", err)
		}
		return withSensor(conf, func(s *environment.MAX44009) error {
			if c.IsSet("upper") {
				if err := s.SetUpperThreshold(ctx, float32(c.Float64("upper"))); err != nil {
					return console.Fail("error setting upper threshold", err)
				}
			}
			if c.IsSet("lower") {
				if err := s.SetLowerThreshold(ctx, float32(c.Float64("lower"))); err != nil {
					return console.Fail("error setting lower threshold", err)
				}
			}
			if c.IsSet("timer") {
				if err := s.SetThresholdTimer(ctx, c.Duration("timer")); err != nil {
					return console.Fail("error setting threshold timer", err)
				}
			}
			upper, err := s.ReadUpperThreshold(ctx)
			if err != nil {
				return console.Fail("error reading upper threshold", err)
			}
			lower, err := s.ReadLowerThreshold(ctx)
			if err != nil {
				return console.Fail("error reading lower threshold", err)
			}
			console.Printf("threshold window: %s - %s lux\n", console.White(lower), console.White(upper))
			return nil
		})
	},
}

var lightInterruptCmd = cli.Command{
	Name: "interrupt",
	Subcommands: []*cli.Command{
		{
			Name:  "enable",
			Flags: sensorFlags(),
			Action: func(c *cli.Context) error {
				return interruptAction(c, func(ctx context.Context, s *environment.MAX44009) error {
					return s.EnableInterrupt(ctx)
				})
			},
		},
		{
			Name:  "disable",
			Flags: sensorFlags(),
			Action: func(c *cli.Context) error {
				return interruptAction(c, func(ctx context.Context, s *environment.MAX44009) error {
					return s.DisableInterrupt(ctx)
				})
			},
		},
		{
			Name:  "check",
			Usage: "read and clear the interrupt status",
			Flags: sensorFlags(),
			Action: func(c *cli.Context) error {
				return interruptAction(c, func(ctx context.Context, s *environment.MAX44009) error {
					happened, err := s.HasInterruptHappened(ctx)
					if err != nil {
						return err
					}
					printInterrupt(happened)
					return nil
				})
			},
		},
		{
			Name:  "pin",
			Usage: "read the INT line wired to an MCP2221 GP input",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "gp",
					Value: 1,
					Usage: "GP pin the INT line is wired to",
				},
			},
			Action: func(c *cli.Context) error {
				ctx := commandContext(c)
				a := adapter.NewMCP2221()
				if err := a.Init(); err != nil {
					return console.Fail("adapter initialization error", err)
				}
				level, err := a.ReadPin(ctx, c.Int("gp"))
				if err != nil {
					return console.Fail("error reading pin", err)
				}
				// INT is active low
				printInterrupt(!level)
				return nil
			},
		},
	},
}

func interruptAction(c *cli.Context, fn func(ctx context.Context, s *environment.MAX44009) error) error {
	ctx := commandContext(c)
	conf, err := loadConfig(c)
	if err != nil {
		return console.Fail("configuration error", err)
	}
	return withSensor(conf, func(s *environment.MAX44009) error {
		err := fn(ctx, s)
		if err != nil {
			return console.Exit(1, "interrupt %s failed: %s", c.Command.Name, console.Red(err))
		}
		return nil
	})
}

func withSensor(conf *config.Config, fn func(s *environment.MAX44009) error) error {
	if conf.Adapter == config.AdapterMock {
		return console.Exit(1, "the mock adapter only supports the read command")
	}
	s, release, err := openSensor(conf)
	if err != nil {
		return console.Fail("adapter initialization error", err)
	}
	defer release()
	return fn(s)
}

func readStatus(ctx context.Context, s *environment.MAX44009) (*lightStatus, error) {
	var err error
	status := &lightStatus{Address: fmt.Sprintf("%#x", s.Addr())}
	status.Settings, err = s.ReadSettings(ctx)
	if err != nil {
		return nil, err
	}
	status.Lux, err = s.ReadLux(ctx)
	if err != nil {
		return nil, err
	}
	status.InterruptPending, err = s.HasInterruptHappened(ctx)
	if err != nil {
		return nil, err
	}
	status.UpperThreshold, err = s.ReadUpperThreshold(ctx)
	if err != nil {
		return nil, err
	}
	status.LowerThreshold, err = s.ReadLowerThreshold(ctx)
	if err != nil {
		return nil, err
	}
	status.ThresholdTimer, err = s.ReadThresholdTimer(ctx)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func settingsFromFlags(c *cli.Context, settings environment.Settings) (environment.Settings, error) {
	var err error
	if c.IsSet("measurement-mode") {
		settings.MeasurementMode, err = environment.ParseMeasurementMode(c.String("measurement-mode"))
		if err != nil {
			return settings, err
		}
	}
	if c.IsSet("configuration-mode") {
		settings.ConfigurationMode, err = environment.ParseConfigurationMode(c.String("configuration-mode"))
		if err != nil {
			return settings, err
		}
	}
	if c.IsSet("integration-time") {
		settings.IntegrationTime, err = environment.ParseIntegrationTime(c.String("integration-time"))
		if err != nil {
			return settings, err
		}
	}
	if c.IsSet("cdr") {
		settings.CurrentDivisionRatio, err = environment.ParseCurrentDivisionRatio(c.String("cdr"))
		if err != nil {
			return settings, err
		}
	}
	if c.IsSet("interrupt") {
		settings.Interrupt = c.Bool("interrupt")
	}
	if settings.ConfigurationMode == environment.ConfigurationModeAutomatic &&
		(c.IsSet("integration-time") || c.IsSet("cdr")) {
		console.Warnf("integration time and current division ratio are ignored in %s mode", console.Yellow(settings.ConfigurationMode))
	}
	return settings, nil
}

func printInterrupt(happened bool) {
	if happened {
		console.PInfof(console.PictoBell, "interrupt: %s", console.Yellow(happened))
		return
	}
	console.PInfof(console.PictoSleep, "interrupt: %s", console.Green(happened))
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(console.Writer())
	err := enc.Encode(v)
	if err != nil {
		return console.Fail("encoding error", err)
	}
	return enc.Close()
}
