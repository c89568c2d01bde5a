package googleauth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalConsent returns a ConsentFunc that prints the consent URL to out
// and reads the authorization code from in. Intended for the interactive
// auth command.
func TerminalConsent(in io.Reader, out io.Writer) ConsentFunc {
	return func(_ context.Context, authURL string) (string, error) {
		fmt.Fprintf(out, `To authorize access to Google Calendar and Google Photos:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account and grant access
3. Copy the authorization code

Paste the authorization code here: `, authURL)

		line, err := bufio.NewReader(in).ReadString('\n')
		code := strings.TrimSpace(line)
		if code == "" {
			if err != nil {
				return "", fmt.Errorf("failed to read authorization code: %w", err)
			}
			return "", fmt.Errorf("empty authorization code")
		}

		return code, nil
	}
}

// ServerConsent returns a ConsentFunc for server mode, where the protocol
// owns stdin and no interactive flow is possible. It always fails, pointing
// the user at the consent URL and the command that completes the flow.
func ServerConsent(command string) ConsentFunc {
	return func(_ context.Context, authURL string) (string, error) {
		return "", fmt.Errorf("interactive authorization required: visit %s to obtain an authorization code, then run %q to complete authentication", authURL, command)
	}
}
