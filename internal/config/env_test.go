package config

import (
	"testing"
	"time"
)

func TestName(t *testing.T) {
	if got := Name("onnx-batch-size"); got != "CHESSZERO_ONNX_BATCH_SIZE" {
		t.Errorf("Name = %s", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHESSZERO_T_STR", "models/net.onnx")
	t.Setenv("CHESSZERO_T_INT", "64")
	t.Setenv("CHESSZERO_T_INT64", "1000000")
	t.Setenv("CHESSZERO_T_FLOAT", "1.25")
	t.Setenv("CHESSZERO_T_DUR", "3ms")
	t.Setenv("CHESSZERO_T_BOOL", "true")

	if got := EnvString("CHESSZERO_T_STR", "x"); got != "models/net.onnx" {
		t.Errorf("EnvString = %q", got)
	}
	if got := EnvInt("CHESSZERO_T_INT", 1); got != 64 {
		t.Errorf("EnvInt = %d", got)
	}
	if got := EnvInt64("CHESSZERO_T_INT64", 1); got != 1000000 {
		t.Errorf("EnvInt64 = %d", got)
	}
	if got := EnvFloat("CHESSZERO_T_FLOAT", 1); got != 1.25 {
		t.Errorf("EnvFloat = %v", got)
	}
	if got := EnvDuration("CHESSZERO_T_DUR", time.Second); got != 3*time.Millisecond {
		t.Errorf("EnvDuration = %v", got)
	}
	if got := EnvBool("CHESSZERO_T_BOOL", false); !got {
		t.Errorf("EnvBool = %v", got)
	}
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CHESSZERO_T_BAD", "not-a-number")
	t.Setenv("CHESSZERO_T_BLANK", "  ")

	if got := EnvInt("CHESSZERO_T_BAD", 7); got != 7 {
		t.Errorf("unparsable int: got %d", got)
	}
	if got := EnvDuration("CHESSZERO_T_BAD", time.Second); got != time.Second {
		t.Errorf("unparsable duration: got %v", got)
	}
	if got := EnvString("CHESSZERO_T_BLANK", "def"); got != "def" {
		t.Errorf("blank string: got %q", got)
	}
	if got := EnvBool("CHESSZERO_T_UNSET_FOR_SURE", true); !got {
		t.Errorf("unset bool: got %v", got)
	}
}
