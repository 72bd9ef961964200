// Package solc shells out to the solc compiler to obtain a Solidity
// constructor's textual assembly listing, the input evmasm.Rewrite
// tokenizes. It is a thin wrapper over os/exec, the idiomatic way to shell
// out in Go; no third-party process-management library in the examined
// ecosystem packages improves on it for a single, synchronous, short-lived
// subprocess.
package solc

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/stylus-tools/ctorasm/log"
)

// Compiler invokes a solc binary found on PATH (or at an explicit path) and
// extracts the EVM assembly listing it prints for --asm.
type Compiler struct {
	// Path to the solc binary. Empty means "solc", resolved via PATH.
	Path string
	Log  log.Logger
}

// New returns a Compiler using the given solc path (empty for PATH lookup)
// and the root logger.
func New(path string) *Compiler {
	return &Compiler{Path: path, Log: log.Root()}
}

func (c *Compiler) bin() string {
	if c.Path == "" {
		return "solc"
	}
	return c.Path
}

func (c *Compiler) logger() log.Logger {
	if c.Log == nil {
		return log.Root()
	}
	return c.Log
}

// Assembly runs `solc --asm --optimize <path>` and returns the assembly
// listing text: everything after the "EVM assembly:" banner line, which is
// the only portion evmasm.Lex understands.
func (c *Compiler) Assembly(solPath string) (string, error) {
	c.logger().Debug("invoking solc", "mode", "asm", "path", solPath)
	out, err := c.run("--asm", "--optimize", solPath)
	if err != nil {
		return "", err
	}
	listing, err := extractAssembly(out)
	if err != nil {
		return "", fmt.Errorf("solc: %w", err)
	}
	return listing, nil
}

func (c *Compiler) run(args ...string) (string, error) {
	cmd := exec.Command(c.bin(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("solc %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

// extractAssembly strips solc's --asm output down to the listing body: it
// skips every line up to and including the one announcing "EVM assembly:",
// the banner solc prints before the object tree.
func extractAssembly(output string) (string, error) {
	lines := strings.Split(output, "\n")
	i := 0
	for ; i < len(lines); i++ {
		if strings.Contains(lines[i], "EVM assembly:") {
			break
		}
	}
	if i >= len(lines) {
		return "", fmt.Errorf("compiler output did not contain an EVM assembly listing")
	}
	return strings.Join(lines[i+1:], "\n"), nil
}
