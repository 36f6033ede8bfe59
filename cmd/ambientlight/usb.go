package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/karalabe/hid"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/ambientlight/adapter"
	"github.com/mklimuk/ambientlight/cmd/ambientlight/console"
	"github.com/mklimuk/ambientlight/pkg/config"
)

type usbAdapter struct {
	name      string
	vendorID  uint16
	productID uint16
}

var knownAdapters = []usbAdapter{
	{name: config.AdapterMCP2221, vendorID: adapter.VendorID, productID: adapter.ProductID},
}

var usbCmd = cli.Command{
	Name:  "usb",
	Usage: "list HID devices and detect supported adapters",
	Subcommands: cli.Commands{
		&usbLsCmd,
		&usbDetectCmd,
	},
}

var usbLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list all HID devices",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Writer(), 0, 8, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "PATH\tSERIAL\tVENDOR\tPRODUCT ID\tMANUFACTURER\tPRODUCT")
		for _, dev := range hid.Enumerate(0, 0) {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%#04x\t%#04x\t%s\t%s\n",
				dev.Path, dev.Serial, dev.VendorID, dev.ProductID, dev.Manufacturer, dev.Product)
		}
		return w.Flush()
	},
}

var usbDetectCmd = cli.Command{
	Name:  "detect",
	Usage: "list attached adapters usable as --adapter, with their --index",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Writer(), 0, 8, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ADAPTER\tINDEX\tPATH\tSERIAL")
		found := 0
		for _, known := range knownAdapters {
			index := 0
			for _, dev := range hid.Enumerate(known.vendorID, known.productID) {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", known.name, index, dev.Path, dev.Serial)
				index++
				found++
			}
		}
		err := w.Flush()
		if err != nil {
			return err
		}
		if found == 0 {
			console.Warnf("no supported adapter attached")
		}
		return nil
	},
}
