package console

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

// Prompt asks a question on the terminal and returns one of the answers. The first
// answer is the default, returned on empty or unrecognized input.
func Prompt(question string, answers ...string) (string, error) {
	if len(answers) == 0 {
		return "", fmt.Errorf("no answers to choose from")
	}
	choices := slices.Clone(answers)
	choices[0] = strings.ToUpper(choices[0])
	rl, err := readline.New(fmt.Sprintf("%s [%s]: ", question, strings.Join(choices, "/")))
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	if slices.Contains(answers, response) {
		return response, nil
	}
	return answers[0], nil
}
