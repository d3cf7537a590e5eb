package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckParentWritable verifies that the directory either passes
// CheckDirectoryAccess or can be created under an accessible parent. Output
// roots are created on demand, so absence alone is not a failure.
func CheckParentWritable(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for parent != "/" && parent != "." {
		if _, err := os.Stat(parent); err == nil {
			if res := CheckDirectoryAccess(name, parent); !res.Passed {
				return res
			}
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
		}
		parent = filepath.Dir(parent)
	}
	return Result{Name: name, Detail: fmt.Sprintf("%s (error: no accessible parent)", path)}
}

// CheckExecuteCommand verifies the notebook execution tool is on PATH.
func CheckExecuteCommand(argv []string) Result {
	const name = "Execute command"
	if len(argv) == 0 {
		return Result{Name: name, Detail: "not configured"}
	}
	resolved, err := exec.LookPath(argv[0])
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", argv[0], err)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}
