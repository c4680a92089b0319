package mcp

import (
	"fmt"
	"os"
)

// parseStringArg extracts a string argument from an MCP arguments map.
// Returns an error if the argument is required but missing or invalid.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// sourceArgs reads the "source" and "path" arguments. Inline source wins;
// otherwise the file at path is read. At least one must be given.
func sourceArgs(argsMap map[string]interface{}) (source []byte, path string, err error) {
	inline, err := parseStringArg(argsMap, "source", false)
	if err != nil {
		return nil, "", err
	}
	path, err = parseStringArg(argsMap, "path", false)
	if err != nil {
		return nil, "", err
	}

	if inline != "" {
		return []byte(inline), path, nil
	}
	if path == "" {
		return nil, "", fmt.Errorf("either source or path parameter is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, path, nil
}
