package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// GateAnswer carries the interactive answers needed to arm the device
// confirmation gate.
type GateAnswer struct {
	Acknowledged bool
	Typed        string
}

// promptDeviceConfirmation walks the user through the destructive-source
// confirmation: an explicit acknowledgement plus re-typing the device
// identifier.
func promptDeviceConfirmation(deviceRef string) (GateAnswer, error) {
	fmt.Printf("\n⚠️  You are about to image the raw device '%s'.\n", deviceRef)
	fmt.Println("The server will hold this device for the entire acquisition.")
	fmt.Println("Selecting the wrong device produces a useless image and can take hours.")
	fmt.Println()
	fmt.Print("Do you want to proceed? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return GateAnswer{}, err
	}

	switch strings.TrimSpace(strings.ToLower(input)) {
	case "yes", "y":
	case "no", "n", "":
		return GateAnswer{}, nil
	default:
		fmt.Println("Please answer yes or no.")
		return promptDeviceConfirmation(deviceRef)
	}

	fmt.Printf("Type the device identifier exactly to confirm (%s): ", deviceRef)
	typed, err := reader.ReadString('\n')
	if err != nil {
		return GateAnswer{}, err
	}

	return GateAnswer{Acknowledged: true, Typed: strings.TrimRight(typed, "\r\n")}, nil
}

// promptProxyPassword reads a proxy password without echoing it.
func promptProxyPassword(host, username string) (string, error) {
	fmt.Printf("Proxy password for %s@%s: ", username, host)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("proxy password required but stdin is not a terminal")
	}

	password, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read proxy password: %w", err)
	}

	return string(password), nil
}

// confirmDeletion asks before removing a remote path.
func confirmDeletion(root, path string) (bool, error) {
	fmt.Printf("You are about to delete '%s' from the %s workspace. This cannot be undone.\n", path, root)
	fmt.Print("Are you sure? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(strings.ToLower(input)) == "yes", nil
}
