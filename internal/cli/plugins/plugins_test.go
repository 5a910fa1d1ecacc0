package plugins

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFind_NotFound(t *testing.T) {
	_, err := Find("definitely-not-a-real-plugin-command")
	if !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Find() error = %v, want ErrPluginNotFound", err)
	}
}

func TestFind_InPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}

	dir := t.TempDir()
	pluginPath := filepath.Join(dir, "tracestat-frobnicate")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("Failed to create plugin: %v", err)
	}

	t.Setenv("PATH", dir)

	found, err := Find("frobnicate")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if found != pluginPath {
		t.Errorf("Find() = %q, want %q", found, pluginPath)
	}
}

func TestIsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit semantics differ on windows")
	}

	dir := t.TempDir()

	exe := filepath.Join(dir, "exe")
	if err := os.WriteFile(exe, []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !isExecutable(exe) {
		t.Error("isExecutable() = false for executable file")
	}
	if isExecutable(plain) {
		t.Error("isExecutable() = true for non-executable file")
	}
	if isExecutable(filepath.Join(dir, "missing")) {
		t.Error("isExecutable() = true for missing file")
	}
	if isExecutable(dir) {
		t.Error("isExecutable() = true for directory")
	}
}

func TestExecute_ExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script plugins need a unix shell")
	}

	dir := t.TempDir()
	pluginPath := filepath.Join(dir, "tracestat-fail")
	if err := os.WriteFile(pluginPath, []byte("#!/bin/sh\nexit 3\n"), 0755); err != nil {
		t.Fatalf("Failed to create plugin: %v", err)
	}

	if code := Execute(pluginPath, nil); code != 3 {
		t.Errorf("Execute() = %d, want 3", code)
	}
}
