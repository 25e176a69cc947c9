// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Compiler lowers generated WGSL before it reaches a device.
type Compiler interface {
	// Compile returns SPIR-V for src. An error rejects the variant.
	Compile(label, src string) ([]byte, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(label, src string) ([]byte, error)

// Compile calls f.
func (f CompilerFunc) Compile(label, src string) ([]byte, error) {
	return f(label, src)
}

// NagaCompiler validates WGSL and compiles it to SPIR-V with naga.
type NagaCompiler struct{}

// Compile implements Compiler.
func (NagaCompiler) Compile(label, src string) ([]byte, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	return spirv, nil
}

// PassthroughCompiler skips lowering; devices consume the WGSL directly.
type PassthroughCompiler struct{}

// Compile implements Compiler.
func (PassthroughCompiler) Compile(string, string) ([]byte, error) {
	return nil, nil
}
