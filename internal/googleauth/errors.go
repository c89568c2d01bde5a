package googleauth

import "fmt"

// ConfigError indicates that the OAuth client configuration (the downloaded
// client secret document) is missing or unreadable.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("OAuth client configuration unavailable at %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FlowError indicates that the interactive consent flow failed or could not
// be completed. AuthURL carries the consent URL so callers can surface it.
type FlowError struct {
	AuthURL string
	Err     error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("OAuth consent flow failed: %v", e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}
