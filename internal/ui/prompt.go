package ui

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

// Provider choices shown by SelectProvider, in display order
var providerOptions = []string{"openrouter", "openai", "ollama"}

// IsInteractive reports whether stdin is a terminal, so prompts can be shown
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// SelectProvider prompts the user to select an embedding provider
func SelectProvider(current string) (string, error) {
	if current == "" {
		current = providerOptions[0]
	}

	var provider string
	prompt := &survey.Select{
		Message: "Select an embedding provider:",
		Options: providerOptions,
		Default: current,
		Description: func(value string, _ int) string {
			switch value {
			case "openrouter":
				return "hosted, OPENROUTER_API_KEY"
			case "openai":
				return "hosted, OPENAI_API_KEY"
			case "ollama":
				return "local, no key"
			}
			return ""
		},
	}

	if err := survey.AskOne(prompt, &provider); err != nil {
		return "", err
	}

	return provider, nil
}

// PromptInput asks for a free-form value with a default
func PromptInput(message, def string) (string, error) {
	var value string
	prompt := &survey.Input{
		Message: message,
		Default: def,
	}

	if err := survey.AskOne(prompt, &value); err != nil {
		return "", err
	}

	return value, nil
}

// PromptAPIKeyStorage asks whether the key comes from the environment.
// Returns true for the environment, false to store it in the config file.
func PromptAPIKeyStorage(envVar string) (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "How should the API key be provided?",
		Options: []string{
			"Environment variable (" + envVar + ")",
			"Store in config file",
		},
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return false, err
	}

	return choice != "Store in config file", nil
}

// PromptPassword reads a secret without echoing it
func PromptPassword(message string) (string, error) {
	var secret string
	prompt := &survey.Password{
		Message: message,
	}

	if err := survey.AskOne(prompt, &secret, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}

	return secret, nil
}

// Confirm asks a yes/no question
func Confirm(message string, def bool) (bool, error) {
	ok := def
	prompt := &survey.Confirm{
		Message: message,
		Default: def,
	}

	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}

	return ok, nil
}
