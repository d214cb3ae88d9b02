// Package utils has prompt helpers for the CLI
package utils

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// SelectPrompt runs the prompt and returns the selected item. Exits when aborted
func SelectPrompt(prompt *promptui.Select) string {
	_, res, err := prompt.Run()
	if err != nil {
		fmt.Println("Aborting")
		os.Exit(1)
	}
	return res
}

// StringPrompt runs the prompt and returns the input. Exits when aborted
func StringPrompt(prompt *promptui.Prompt) string {
	res, err := prompt.Run()
	if err != nil {
		fmt.Println("Aborting")
		os.Exit(1)
	}
	return res
}
