package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/meysamhadeli/codemd/constants/lipgloss"
)

// InputPrompt prompts the user for a single line of input
func InputPrompt(reader *bufio.Reader, label string) (string, error) {

	fmt.Print(lipgloss.BlueSky.Render(label))

	userInput, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("error reading input: %w", err)
	}

	return CleanPathInput(userInput), nil
}

// InputPromptWithContext prompts the user with context cancellation support
func InputPromptWithContext(ctx context.Context, reader *bufio.Reader, label string) (string, error) {
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		input, err := InputPrompt(reader, label)
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- input
	}()

	select {
	case <-ctx.Done():
		fmt.Println() // Print newline for clean exit
		return "", ctx.Err()
	case err := <-errChan:
		return "", err
	case input := <-inputChan:
		return input, nil
	}
}

// CleanPathInput trims whitespace and strips the quotes a shell copy of "C:\Path" carries
func CleanPathInput(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), `"`, "")
}

// ConfirmPrompt asks a yes/no question, defaulting to no
func ConfirmPrompt(question string, reader *bufio.Reader) (bool, error) {
	fmt.Print(lipgloss.Yellow.Render(fmt.Sprintf("%s (y/N): ", question)))

	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("error reading input: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
