package env

import "os"

// Get reads an environment variable, treating unset and empty the same so a
// blank override in a unit file cannot blank out the fallback.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
