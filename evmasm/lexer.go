package evmasm

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/stylus-tools/ctorasm/core/vm"
)

var (
	reLabelDef  = regexp.MustCompile(`^tag_(\d+):$`)
	reLabelPush = regexp.MustCompile(`^tag\s+(\d+)$`)
	reDataPush  = regexp.MustCompile(`^data_([0-9a-fA-F]+)$`)
	reDataBegin = regexp.MustCompile(`^data_([0-9a-fA-F]+)\s+([0-9a-fA-F]*)$`)
	reSubBegin  = regexp.MustCompile(`^sub_(\d+):\s*assembly\s*\{$`)
	rePush      = regexp.MustCompile(`^PUSH(\d{0,2})\s+(0x[0-9a-fA-F]+)$`)
	rePushTag   = regexp.MustCompile(`^PUSH\s+tag\s+(\d+)$`)
	rePushData  = regexp.MustCompile(`^PUSH\s+data_([0-9a-fA-F]+)$`)
	reDataSize  = regexp.MustCompile(`(?i)^datasize\(sub_(\d+)\)$`)
	reDataOff   = regexp.MustCompile(`(?i)^dataoffset\(sub_(\d+)\)$`)
	reImmutable = regexp.MustCompile(`^(?:PUSHIMMUTABLE|ASSIGNIMMUTABLE)\("([^"]+)"\)$`)
)

// Lex tokenizes a textual assembly listing into a flat Token stream.
//
// The grammar is the one described in the design: nested "sub_N: assembly {"
// blocks, "tag_N:" label definitions, pushes of tags/data labels/literals,
// bare mnemonics, and "data_XXXX <hex-bytes>" blobs. Comments (anything from
// "//" to end of line) and blank lines are discarded before matching.
func Lex(source []byte) ([]Token, error) {
	var tokens []Token
	lines := strings.Split(string(source), "\n")
	for i, raw := range lines {
		lineno := i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tok, err := lexLine(line, lineno)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok...)
	}
	return tokens, nil
}

func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func lexLine(line string, lineno int) ([]Token, error) {
	switch {
	case line == "}":
		return []Token{{Kind: ObjectEnd, Line: lineno}}, nil

	case reSubBegin.MatchString(line):
		m := reSubBegin.FindStringSubmatch(line)
		return []Token{{Kind: ObjectBegin, Line: lineno, Name: m[1]}}, nil

	case reLabelDef.MatchString(line):
		m := reLabelDef.FindStringSubmatch(line)
		return []Token{{Kind: LabelDef, Line: lineno, LabelID: m[1]}}, nil

	case reLabelPush.MatchString(line):
		m := reLabelPush.FindStringSubmatch(line)
		return []Token{{Kind: PushLabel, Line: lineno, LabelID: m[1]}}, nil

	case rePushTag.MatchString(line):
		m := rePushTag.FindStringSubmatch(line)
		return []Token{{Kind: PushLabel, Line: lineno, LabelID: m[1]}}, nil

	case rePushData.MatchString(line):
		m := rePushData.FindStringSubmatch(line)
		return []Token{{Kind: PushData, Line: lineno, LabelID: m[1]}}, nil

	case reDataSize.MatchString(line):
		m := reDataSize.FindStringSubmatch(line)
		return []Token{{Kind: PushSize, Line: lineno, Name: m[1]}}, nil

	case reDataOff.MatchString(line):
		m := reDataOff.FindStringSubmatch(line)
		return []Token{{Kind: PushOffset, Line: lineno, Name: m[1]}}, nil

	case reImmutable.MatchString(line):
		m := reImmutable.FindStringSubmatch(line)
		return []Token{{Kind: Immutable, Line: lineno, LabelID: m[1]}}, nil

	case reDataPush.MatchString(line) && !strings.Contains(line, " "):
		m := reDataPush.FindStringSubmatch(line)
		return []Token{{Kind: PushData, Line: lineno, LabelID: m[1]}}, nil

	case reDataBegin.MatchString(line):
		m := reDataBegin.FindStringSubmatch(line)
		data, err := hex.DecodeString(m[2])
		if err != nil {
			return nil, &LexError{Line: lineno, Msg: "malformed data hex", Err: err}
		}
		return []Token{{Kind: DataBegin, Line: lineno, LabelID: m[1], Data: data}}, nil

	case rePush.MatchString(line):
		m := rePush.FindStringSubmatch(line)
		value, err := hex.DecodeString(strings.TrimPrefix(m[2], "0x"))
		if err != nil {
			return nil, &LexError{Line: lineno, Msg: "malformed push literal", Err: err}
		}
		width := 0
		explicit := false
		if m[1] != "" {
			w, err := strconv.Atoi(m[1])
			if err != nil || w < 0 || w > 32 {
				return nil, &LexError{Line: lineno, Msg: fmt.Sprintf("invalid push width %q", m[1])}
			}
			width = w
			explicit = true
		}
		return []Token{{Kind: Push, Line: lineno, Value: trimLeadingZeroes(value), Width: width, ExplicitWidth: explicit}}, nil

	default:
		mnemonic := strings.ToUpper(line)
		if vm.StringToOp(mnemonic) == vm.OpCode(0) && mnemonic != "STOP" {
			return nil, &LexError{Line: lineno, Msg: fmt.Sprintf("unknown mnemonic %q", line)}
		}
		return []Token{{Kind: Op, Line: lineno, Mnemonic: mnemonic}}, nil
	}
}

func trimLeadingZeroes(b []byte) []byte {
	if len(b) == 0 {
		return []byte{0}
	}
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return b[i:]
}
