// Package config resolves command settings from flags with environment
// overrides. Every helper returns def when the variable is unset or does not
// parse, so a flag default can be written as config.EnvInt("CHESSZERO_SIMS", 50).
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Prefix is prepended to every variable name by Name.
const Prefix = "CHESSZERO_"

// Name turns a flag name such as "onnx-batch-size" into CHESSZERO_ONNX_BATCH_SIZE.
func Name(flag string) string {
	return Prefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func EnvString(key, def string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return def
}

func EnvInt(key string, def int) int {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func EnvInt64(key string, def int64) int64 {
	if v, ok := lookup(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func EnvFloat(key string, def float64) float64 {
	if v, ok := lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func EnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func EnvBool(key string, def bool) bool {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
