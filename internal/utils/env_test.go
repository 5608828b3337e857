package utils

import (
	"reflect"
	"testing"
)

func TestGetEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_SET", "value")

	if got := GetEnv("UTILS_TEST_SET", "fallback"); got != "value" {
		t.Errorf("GetEnv set var = %q, want %q", got, "value")
	}
	if got := GetEnv("UTILS_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv unset var = %q, want %q", got, "fallback")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("UTILS_TEST_INT", "42")
	t.Setenv("UTILS_TEST_NOT_INT", "forty-two")

	if got := GetEnvInt("UTILS_TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("UTILS_TEST_NOT_INT", 7); got != 7 {
		t.Errorf("GetEnvInt on junk = %d, want default 7", got)
	}
	if got := GetEnvInt("UTILS_TEST_INT_UNSET", 7); got != 7 {
		t.Errorf("GetEnvInt unset = %d, want default 7", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("UTILS_TEST_BOOL", "true")
	t.Setenv("UTILS_TEST_NOT_BOOL", "yep")

	if !GetEnvBool("UTILS_TEST_BOOL", false) {
		t.Error("GetEnvBool = false, want true")
	}
	if GetEnvBool("UTILS_TEST_NOT_BOOL", false) {
		t.Error("GetEnvBool on junk = true, want default false")
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("UTILS_TEST_LIST", " Uni.edu, COLLEGE.edu ,, ")

	got := GetEnvList("UTILS_TEST_LIST", "")
	want := []string{"uni.edu", "college.edu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEnvList = %v, want %v", got, want)
	}

	got = GetEnvList("UTILS_TEST_LIST_UNSET", "a,b")
	want = []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEnvList default = %v, want %v", got, want)
	}
}
