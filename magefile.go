//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles both executables into ./bin
func Build() error {
	mg.Deps(BuildPreprocess)
	mg.Deps(BuildMagnify)
	fmt.Println("Compilation finished")
	return nil
}

func BuildPreprocess() error {
	fmt.Println("Building preprocess executable...")
	return goCommand("build", "-o", "./bin/preprocess", "./preprocess")
}

func BuildMagnify() error {
	fmt.Println("Building magnify executable...")
	return goCommand("build", "-o", "./bin/magnify", "./magnify")
}

// Test runs every package test. The HDF5 store needs libhdf5 and cgo.
func Test() error {
	fmt.Println("Running tests...")
	return goCommand("test", "./...")
}

// hdf5 is linked through cgo, pass the user's flags through
func goCommand(args ...string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
