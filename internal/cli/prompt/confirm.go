// Package prompt provides the interactive confirmations that guard
// destructive admin commands.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted reports that the user backed out with Ctrl+C instead of
// answering.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err came from the user cancelling a prompt.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort)
}

// ask runs p and folds promptui's sentinel errors into two outcomes:
// declined (a "no" answer) and ErrAborted (Ctrl+C).
func ask(p promptui.Prompt) (answer string, declined bool, err error) {
	answer, err = p.Run()
	switch {
	case err == nil:
		return answer, false, nil
	case errors.Is(err, promptui.ErrInterrupt):
		return answer, false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		return answer, true, nil
	}
	return answer, false, err
}

// Confirm asks a yes/no question and reports the answer. Empty input
// selects the default shown in the label; Ctrl+C returns ErrAborted.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	answer, declined, err := ask(promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, hint),
		IsConfirm: true,
	})
	if err != nil || declined {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "":
		return defaultYes, nil
	}
	return false, nil
}

// ConfirmWithForce skips the prompt when force is set, for scripted use.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

// ConfirmDanger guards operations that destroy data, such as replacing
// the live database from a backup. The user must type confirmWord
// exactly; Ctrl+C returns ErrAborted.
func ConfirmDanger(label, confirmWord string) (bool, error) {
	answer, declined, err := ask(promptui.Prompt{
		Label: fmt.Sprintf("%s (type '%s' to confirm)", label, confirmWord),
		Validate: func(input string) error {
			if input != confirmWord {
				return fmt.Errorf("type '%s' to confirm", confirmWord)
			}
			return nil
		},
	})
	if err != nil || declined {
		return false, err
	}
	return answer == confirmWord, nil
}
