package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/ambientlight"
	"github.com/mklimuk/ambientlight/adapter"
	"github.com/mklimuk/ambientlight/cmd/ambientlight/console"
	"github.com/mklimuk/ambientlight/environment"
	"github.com/mklimuk/ambientlight/i2c"
	"github.com/mklimuk/ambientlight/pkg/config"
	"github.com/mklimuk/ambientlight/snsctx"
)

func sensorFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML sensor profile",
		},
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Value:   config.AdapterMCP2221,
			Usage:   "bus adapter: mcp2221, generic, nanopi or mock",
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Value:   "/dev/i2c-1",
			Usage:   "i2c device of the generic adapter",
		},
		&cli.IntFlag{
			Name:  "bus",
			Value: -1,
			Usage: "i2c bus number of the nanopi adapter (-1 for default)",
		},
		&cli.BoolFlag{
			Name:  "a0",
			Usage: "state of the A0 address pin",
		},
	}
	return append(flags, extra...)
}

// loadConfig reads the profile file if given and applies flags that were set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	conf := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		conf, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if c.IsSet("adapter") || c.String("config") == "" {
		conf.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		conf.Device = c.String("device")
	}
	if c.IsSet("bus") {
		conf.Bus = c.Int("bus")
	}
	if c.IsSet("a0") {
		a0 := c.Bool("a0")
		conf.A0 = &a0
	}
	return conf, conf.Validate()
}

func commandContext(c *cli.Context) context.Context {
	return snsctx.SetVerbose(c.Context, c.Bool("verbose"))
}

// openBus returns the bus selected by the config and a function releasing it.
func openBus(conf *config.Config) (ambientlight.I2CBus, func(), error) {
	switch conf.Adapter {
	case config.AdapterMCP2221:
		a := adapter.NewMCP2221()
		err := a.Init()
		if err != nil {
			return nil, nil, err
		}
		return a, func() {}, nil
	case config.AdapterGeneric:
		bus, err := i2c.NewGenericBus(conf.Device)
		if err != nil {
			return nil, nil, err
		}
		err = bus.SetSpeed(i2c.MaxSpeed)
		if err != nil {
			console.Warnf("could not set bus speed: %s", console.Yellow(err))
		}
		return bus, func() {
			err := bus.Close()
			if err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
		}, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		err := npi.I2cBusAdaptor.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := adapter.NewGobotBus(npi, conf.Bus)
		return bus, func() {
			err := bus.Close()
			if err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
			err = npi.I2cBusAdaptor.Finalize()
			if err != nil {
				console.Errorf("error finalizing adaptor: %s", console.Red(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("adapter %q has no bus", conf.Adapter)
}

// openSensor opens the bus and creates the driver. The returned function releases
// the driver and closes the bus.
func openSensor(conf *config.Config) (*environment.MAX44009, func(), error) {
	bus, closeBus, err := openBus(conf)
	if err != nil {
		return nil, nil, err
	}
	s := environment.NewMAX44009(bus, conf.AddrSelector())
	return s, func() {
		_ = s.Release()
		closeBus()
	}, nil
}
