package cmd

import (
	"fmt"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

type qualityStep struct {
	use   string
	short string
	run   func() error
}

var qualitySteps = []qualityStep{
	{use: "test", short: "Run unit tests", run: func() error { return test.Test() }},
	{use: "lint", short: "Run linting", run: func() error { return test.Lint() }},
	{use: "integration-test", short: "Run integration tests against an attached MAX44009", run: func() error { return test.Integ() }},
}

// QualityCmds returns one command per quality gate.
func QualityCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(qualitySteps))
	for _, step := range qualitySteps {
		cmds = append(cmds, &cobra.Command{
			Use:   step.use,
			Short: step.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				err := step.run()
				if err != nil {
					return fmt.Errorf("%s failed: %w", step.use, err)
				}
				return nil
			},
		})
	}
	return cmds
}
