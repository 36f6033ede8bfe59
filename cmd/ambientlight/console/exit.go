package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Exit returns an error that makes the cli app terminate with the given code.
func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}

// Fail reports a failed step with exit code 1.
func Fail(what string, err error) cli.ExitCoder {
	return Exit(1, "%s: %s", what, Red(err))
}
