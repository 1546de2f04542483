package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownKey is returned for a key that is not part of the configuration.
var ErrUnknownKey = errors.New("unknown configuration key")

// KeyKind is the value type of a configuration key.
type KeyKind string

const (
	KindString KeyKind = "string"
	KindBool   KeyKind = "bool"
	KindInt    KeyKind = "int"
	KindList   KeyKind = "list"
	KindInts   KeyKind = "ints"
)

// keys lists every supported key and its kind.
var keys = map[string]KeyKind{
	"learn.algorithm":       KindString,
	"learn.interactive":     KindBool,
	"learn.tui":             KindBool,
	"learn.output_dir":      KindString,
	"learn.open_browser":    KindBool,
	"learn.dot_path":        KindString,
	"learn.max_rounds":      KindInt,
	"bench.repeat":          KindInt,
	"bench.cache":           KindBool,
	"bench.learners":        KindList,
	"bench.output_dir":      KindString,
	"bench.collect_garbage": KindBool,
	"series.lower":          KindInt,
	"series.upper":          KindInt,
	"series.step":           KindInt,
	"series.alphabet_sizes": KindInts,
	"series.seed":           KindInt,
	"state.enabled":         KindBool,
	"state.db_path":         KindString,
	"metrics.textfile":      KindString,
	"log.debug_file":        KindString,
}

// Keys returns the supported keys in sorted order.
func Keys() []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidateKey checks that key is supported.
func ValidateKey(key string) error {
	if _, ok := keys[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// ParseValue converts the command-line text of a key's value.
func ParseValue(key, value string) (any, error) {
	kind, ok := keys[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid bool %q", key, value)
		}
		return b, nil
	case KindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", key, value)
		}
		return n, nil
	case KindList:
		return splitList(value), nil
	case KindInts:
		var out []int
		for _, s := range splitList(value) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid integer %q", key, s)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		return value, nil
	}
}

// Lookup returns the value of key in cfg formatted for display.
func Lookup(cfg *Config, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	switch key {
	case "learn.algorithm":
		return cfg.Learn.Algorithm, nil
	case "learn.interactive":
		return strconv.FormatBool(cfg.Learn.Interactive), nil
	case "learn.tui":
		return strconv.FormatBool(cfg.Learn.TUI), nil
	case "learn.output_dir":
		return cfg.Learn.OutputDir, nil
	case "learn.open_browser":
		return strconv.FormatBool(cfg.Learn.OpenBrowser), nil
	case "learn.dot_path":
		return cfg.Learn.DotPath, nil
	case "learn.max_rounds":
		return strconv.Itoa(cfg.Learn.MaxRounds), nil
	case "bench.repeat":
		return strconv.Itoa(cfg.Bench.Repeat), nil
	case "bench.cache":
		return strconv.FormatBool(cfg.Bench.Cache), nil
	case "bench.learners":
		return strings.Join(cfg.Bench.Learners, ","), nil
	case "bench.output_dir":
		return cfg.Bench.OutputDir, nil
	case "bench.collect_garbage":
		return strconv.FormatBool(cfg.Bench.CollectGarbage), nil
	case "series.lower":
		return strconv.Itoa(cfg.Series.Lower), nil
	case "series.upper":
		return strconv.Itoa(cfg.Series.Upper), nil
	case "series.step":
		return strconv.Itoa(cfg.Series.Step), nil
	case "series.alphabet_sizes":
		parts := make([]string, len(cfg.Series.AlphabetSizes))
		for i, n := range cfg.Series.AlphabetSizes {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ","), nil
	case "series.seed":
		return strconv.FormatInt(cfg.Series.Seed, 10), nil
	case "state.enabled":
		return strconv.FormatBool(cfg.State.Enabled), nil
	case "state.db_path":
		return cfg.State.DBPath, nil
	case "metrics.textfile":
		return cfg.Metrics.Textfile, nil
	default:
		return cfg.Log.DebugFile, nil
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
