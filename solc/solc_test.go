package solc

import (
	"strings"
	"testing"
)

func TestExtractAssemblyStripsBanner(t *testing.T) {
	output := "======= ctor.sol:Ctor =======\n" +
		"EVM assembly:\n" +
		"    /* \"ctor.sol\":0:10 contract Ctor */\n" +
		"  tag_1:\n" +
		"    STOP\n"
	got, err := extractAssembly(output)
	if err != nil {
		t.Fatalf("extractAssembly: %v", err)
	}
	if strings.Contains(got, "EVM assembly:") {
		t.Fatalf("banner line was not stripped: %q", got)
	}
	if !strings.Contains(got, "tag_1:") {
		t.Fatalf("listing body was dropped: %q", got)
	}
}

func TestExtractAssemblyRejectsMissingBanner(t *testing.T) {
	if _, err := extractAssembly("solc: error: no such file\n"); err == nil {
		t.Fatal("expected error when output has no EVM assembly banner")
	}
}

func TestBinDefaultsToPath(t *testing.T) {
	c := New("")
	if c.bin() != "solc" {
		t.Fatalf("got %q, want %q", c.bin(), "solc")
	}
	c2 := New("/opt/solc-0.8.26")
	if c2.bin() != "/opt/solc-0.8.26" {
		t.Fatalf("got %q, want explicit path", c2.bin())
	}
}
