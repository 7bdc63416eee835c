//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "wortschatz"

// Default target to run when none is specified
var Default = Build

// Build compiles the wortschatz binary
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/wortschatz")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Generate regenerates the mocks
func Generate() error {
	return sh.RunV("go", "generate", "./...")
}

// Check runs vet and the tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install copies the binary to ~/go/bin
func Install() error {
	mg.Deps(Build)

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dest := filepath.Join(home, "go", "bin", binary)
	if err := sh.Copy(dest, binary); err != nil {
		return fmt.Errorf("failed to install %s: %w", dest, err)
	}
	return os.Chmod(dest, 0755)
}

// Clean removes the binary
func Clean() error {
	return sh.Rm(binary)
}
