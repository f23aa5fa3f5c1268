package config

import (
	"fmt"
	"os"
	"strings"
)

// RequiredEnvVars lists environment variables that must be set in
// production.
var RequiredEnvVars = []string{
	"API_KEY",
	"GEMINI_API_KEY",
}

// ValidateEnv checks that all required environment variables are set
func ValidateEnv() error {
	var missing []string
	for _, envVar := range RequiredEnvVars {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}
