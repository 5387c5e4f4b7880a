package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// programRoot is F1_ROOT when set, otherwise the directory holding the executable.
func programRoot() (string, error) {
	if root := os.Getenv(envRoot); root != "" {
		return filepath.Abs(root)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// loadDotEnv applies path without overriding variables already set.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func environMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			out[key] = value
		}
	}
	return out
}

// sanitizeEnv drops malformed values for the typed fields of t so their
// defaults apply, and canonicalizes accepted booleans.
func sanitizeEnv(environ map[string]string, t reflect.Type) []string {
	var warnings []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		if key == "" {
			if field.Type.Kind() == reflect.Struct {
				warnings = append(warnings, sanitizeEnv(environ, field.Type)...)
			}
			continue
		}
		raw, ok := environ[key]
		if !ok || strings.TrimSpace(raw) == "" {
			delete(environ, key)
			continue
		}
		value, valid := normalizeValue(field.Type, raw)
		if !valid {
			delete(environ, key)
			warnings = append(warnings, fmt.Sprintf("%s=%q is invalid, using default", key, raw))
			continue
		}
		environ[key] = value
	}
	return warnings
}

func normalizeValue(t reflect.Type, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case t == durationType:
		parsed, err := time.ParseDuration(raw)
		return raw, err == nil && parsed > 0
	case t.Kind() == reflect.Bool:
		switch strings.ToLower(raw) {
		case "1", "true", "yes":
			return "true", true
		case "0", "false", "no":
			return "false", true
		}
		return raw, false
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		return raw, err == nil && parsed > 0
	default:
		return raw, true
	}
}
