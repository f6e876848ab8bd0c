package runner

import (
	"context"
	"io"
	"os/exec"
	"runtime"
	"testing"
)

func TestProcessExecutor_CapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()
	p := &ProcessExecutor{Stderr: io.Discard}

	res, err := p.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello; echo oops >&2"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Succeeded || string(res.Output) != "hello\n" {
		t.Errorf("Run() = %+v, want success with stdout only", res)
	}
}

func TestProcessExecutor_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()
	p := &ProcessExecutor{Stderr: io.Discard}

	res, err := p.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo partial; exit 3"}})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for non-zero exit", err)
	}
	if res.Succeeded {
		t.Error("Succeeded = true, want false")
	}
	if string(res.Output) != "partial\n" {
		t.Errorf("Output = %q, want %q", res.Output, "partial\n")
	}
}

func TestProcessExecutor_WorkingDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()
	dir := t.TempDir()
	p := &ProcessExecutor{Stderr: io.Discard}

	res, err := p.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "pwd -P"}, Dir: dir})
	if err != nil || !res.Succeeded {
		t.Fatalf("Run() = (%+v, %v)", res, err)
	}
	if len(res.Output) == 0 {
		t.Error("pwd printed nothing")
	}
}

func TestProcessExecutor_MissingBinary(t *testing.T) {
	t.Parallel()
	p := &ProcessExecutor{Stderr: io.Discard}

	_, err := p.Run(context.Background(), Command{Name: "dolly-no-such-compiler"})
	if err == nil {
		t.Fatal("Run() error = nil, want not found")
	}
	if !isNotFound(err) {
		t.Errorf("isNotFound(%v) = false, want true", err)
	}

	_, err = p.Run(context.Background(), Command{Name: "/nonexistent/dir/bsc"})
	if !isNotFound(err) {
		t.Errorf("isNotFound(%v) = false for absolute path, want true", err)
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()
	if !isNotFound(&exec.Error{Name: "bsc", Err: exec.ErrNotFound}) {
		t.Error("isNotFound(exec.ErrNotFound) = false")
	}
	if isNotFound(context.Canceled) {
		t.Error("isNotFound(context.Canceled) = true")
	}
}
