package config

import (
	"testing"
)

func TestExpandEnv_SetVar(t *testing.T) {
	t.Setenv("TEST_VAR", "hello")

	got := ExpandEnv("value: ${TEST_VAR}")
	want := "value: hello"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_UnsetVar(t *testing.T) {
	got := ExpandEnv("value: ${UNSET_VAR_12345}")
	want := "value: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultUsedWhenUnset(t *testing.T) {
	got := ExpandEnv("value: ${UNSET_VAR_12345:-fallback}")
	want := "value: fallback"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultIgnoredWhenSet(t *testing.T) {
	t.Setenv("TEST_VAR", "real")

	got := ExpandEnv("value: ${TEST_VAR:-fallback}")
	want := "value: real"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultUsedWhenEmpty(t *testing.T) {
	t.Setenv("TEST_VAR", "")

	got := ExpandEnv("value: ${TEST_VAR:-fallback}")
	want := "value: fallback"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_MultipleVars(t *testing.T) {
	t.Setenv("VAR_A", "alpha")
	t.Setenv("VAR_B", "beta")

	got := ExpandEnv("${VAR_A}:${VAR_B}")
	want := "alpha:beta"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_NoPatterns(t *testing.T) {
	input := "plain text with $DOLLAR but no braces"
	if got := ExpandEnv(input); got != input {
		t.Errorf("got %q, want unchanged input", got)
	}
}
