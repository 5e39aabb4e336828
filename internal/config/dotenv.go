package config

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// LoadDotEnv loads variables from .env-like files. Variables already present
// in the process environment keep precedence; missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := applyDotEnvFile(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

func applyDotEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, unquoteDotEnvValue(value))
	}
	return scanner.Err()
}

func unquoteDotEnvValue(raw string) string {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 {
		quote := value[0]
		if (quote == '"' || quote == '\'') && value[len(value)-1] == quote {
			inner := value[1 : len(value)-1]
			if quote == '"' {
				return strings.NewReplacer(
					`\\`, `\`,
					`\n`, "\n",
					`\t`, "\t",
					`\"`, `"`,
				).Replace(inner)
			}
			return inner
		}
	}
	// Unquoted values may carry a trailing inline comment.
	if index := strings.Index(value, " #"); index >= 0 {
		return strings.TrimSpace(value[:index])
	}
	return value
}
