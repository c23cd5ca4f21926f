package main

import (
	"encoding/json"

	"silicate/internal/alert"
)

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func success(message string) {
	alert.DisplaySuccess(alert.Terminal{W: stdout}, message)
}
