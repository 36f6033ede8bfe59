package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ambientlight/adapter"
	"github.com/mklimuk/ambientlight/cmd/ambientlight/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 USB to I2C adapter",
	Flags: []cli.Flag{indexFlag},
	Subcommands: []*cli.Command{
		&mcp2221StatusCmd,
		&mcp2221GPIOCmd,
		&mcp2221ReleaseCmd,
	},
}

var indexFlag = &cli.IntFlag{
	Name:  "index",
	Value: -1,
	Usage: "adapter index as listed by 'usb detect' when several are attached",
}

func newMCP2221(c *cli.Context) *adapter.MCP2221 {
	return adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
}

type mcp2221Report struct {
	I2C  *adapter.MCP2221Status         `yaml:"i2c"`
	GPIO *adapter.MCP2221GPIOParameters `yaml:"gpio,omitempty"`
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Usage: "print the I2C engine state and the GP pin settings",
	Action: func(c *cli.Context) error {
		a := newMCP2221(c)
		ctx := commandContext(c)
		status, err := a.Status(ctx)
		if err != nil {
			return console.Fail("adapter communication error", err)
		}
		gpio, err := a.GetGPIOParameters(ctx)
		if err != nil {
			return console.Fail("adapter communication error", err)
		}
		return printYAML(mcp2221Report{I2C: status, GPIO: &gpio})
	},
}

var mcp2221GPIOCmd = cli.Command{
	Name:  "gpio",
	Usage: "read the GP pin levels",
	Action: func(c *cli.Context) error {
		values, err := newMCP2221(c).ReadGPIO(commandContext(c))
		if err != nil {
			return console.Fail("adapter communication error", err)
		}
		return printYAML(values)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel the current I2C transfer and free the bus",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
	},
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			answer, err := console.Prompt("cancel the pending transfer and release the bus?", console.No, console.Yes)
			if err != nil {
				return console.Fail("prompt error", err)
			}
			if answer != console.Yes {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		status, err := newMCP2221(c).ReleaseBus(commandContext(c))
		if err != nil {
			return console.Fail("adapter communication error", err)
		}
		return printYAML(mcp2221Report{I2C: status})
	},
}
