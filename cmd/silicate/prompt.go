package main

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
)

// These are variables so tests can answer without a terminal.
var (
	askPassword = func(message string) (string, error) {
		var answer string
		prompt := &survey.Password{Message: message}
		err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required))
		return answer, err
	}
	askInput = func(message string) (string, error) {
		var answer string
		prompt := &survey.Input{Message: message}
		err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required))
		return answer, err
	}
	askConfirm = func(message string) (bool, error) {
		answer := false
		err := survey.AskOne(&survey.Confirm{Message: message}, &answer)
		return answer, err
	}
)

// valueOr returns value, prompting for it when empty.
func valueOr(value string, ask func(string) (string, error), message string) (string, error) {
	if value != "" {
		return value, nil
	}
	return ask(message)
}

// newPassword prompts twice and checks both answers match.
func newPassword() (string, error) {
	first, err := askPassword("New password:")
	if err != nil {
		return "", err
	}
	second, err := askPassword("Repeat new password:")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords do not match")
	}
	return first, nil
}
