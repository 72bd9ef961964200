// ctorasm generates and deploys Stylus contract-creation payloads whose
// runtime section is a WASM activation envelope produced by rewriting a
// Solidity constructor's compiled deployment bytecode.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/stylus-tools/ctorasm/core/asm"
	"github.com/stylus-tools/ctorasm/deploy"
	"github.com/stylus-tools/ctorasm/evmasm"
	"github.com/stylus-tools/ctorasm/internal/flags"
	"github.com/stylus-tools/ctorasm/log"
	"github.com/stylus-tools/ctorasm/solc"
	"github.com/stylus-tools/ctorasm/wasmpack"
)

var (
	solFlag = &cli.StringFlag{
		Name:     "sol",
		Usage:    "path to a Solidity source file whose constructor pre-initializes storage",
		Category: flags.MiscCategory,
	}
	wasmFlag = &cli.StringFlag{
		Name:     "wasm",
		Usage:    "path to the compiled WASM program to activate",
		Required: true,
		Category: flags.MiscCategory,
	}
	argsFlag = &cli.StringFlag{
		Name:     "args",
		Usage:    "ABI-encoded constructor arguments, hex-encoded",
		Category: flags.MiscCategory,
	}
	outputFlag = &cli.StringFlag{
		Name:     "output",
		Usage:    "write the deployment hex to this file instead of stdout",
		Category: flags.MiscCategory,
	}
	debugFlag = &cli.BoolFlag{
		Name:     "debug",
		Usage:    "print a disassembly of the rewritten deployment bytecode to stderr",
		Category: flags.MiscCategory,
	}
	solcPathFlag = &cli.StringFlag{
		Name:     "solc",
		Usage:    "path to the solc binary (default: look up \"solc\" on PATH)",
		Category: flags.MiscCategory,
	}
	rpcFlag = &cli.StringFlag{
		Name:     "rpc",
		Aliases:  []string{"e"},
		Usage:    "RPC URL of the target chain",
		Required: true,
		Category: flags.MiscCategory,
	}
	privateKeyFlag = &cli.StringFlag{
		Name:     "private-key",
		Usage:    "hex-encoded private key of the deploying account",
		Category: flags.AccountCategory,
	}
	privateKeyPathFlag = &cli.StringFlag{
		Name:     "private-key-path",
		Usage:    "path to a file containing a hex-encoded private key",
		Category: flags.AccountCategory,
	}
	keystoreFlag = &flags.DirectoryFlag{
		Name:     "keystore",
		Usage:    "path to an encrypted keystore JSON file",
		Category: flags.AccountCategory,
	}
	keystorePasswordPathFlag = &cli.StringFlag{
		Name:     "keystore-password-path",
		Usage:    "path to a file containing the keystore passphrase",
		Category: flags.AccountCategory,
	}
	deployOnlyFlag = &cli.BoolFlag{
		Name:     "deploy-only",
		Usage:    "submit the deploy transaction but skip Stylus activation",
		Category: flags.MiscCategory,
	}
	quietFlag = &cli.BoolFlag{
		Name:     "quiet",
		Aliases:  []string{"q"},
		Usage:    "suppress informational log output",
		Category: flags.MiscCategory,
	}
	noColorFlag = &cli.BoolFlag{
		Name:     "no-color",
		Usage:    "disable ANSI color in terminal log output",
		Category: flags.MiscCategory,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "ctorasm"
	app.Usage = "rewrite a Solidity constructor's deployment bytecode to return a WASM Stylus program"
	app.Flags = []cli.Flag{noColorFlag, quietFlag}
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:   "generate",
			Usage:  "produce the deployment hex for a WASM program, optionally wrapped by a Solidity constructor",
			Flags:  []cli.Flag{solFlag, wasmFlag, argsFlag, outputFlag, debugFlag, solcPathFlag},
			Action: generateCommand,
		},
		{
			Name:  "deploy",
			Usage: "generate the deployment payload and submit it, then activate the resulting program",
			Flags: []cli.Flag{
				solFlag, wasmFlag, argsFlag, debugFlag, solcPathFlag,
				rpcFlag, privateKeyFlag, privateKeyPathFlag, keystoreFlag, keystorePasswordPathFlag,
				deployOnlyFlag,
			},
			Action: deployCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogging(ctx *cli.Context) {
	level := log.LevelInfo
	if ctx.Bool(quietFlag.Name) {
		level = log.LevelWarn
	}
	_, noColorEnv := os.LookupEnv("NO_COLOR")
	useColor := !ctx.Bool(noColorFlag.Name) && !noColorEnv
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, useColor)
	log.SetDefault(log.NewLogger(handler))
}

// buildPayload runs the shared generate/deploy pipeline: compress the WASM
// program into an activation envelope, optionally compile a Solidity
// constructor and rewrite its deployment bytecode to return that envelope,
// and append the constructor-argument tail.
func buildPayload(ctx *cli.Context) (payload, runtimeCode []byte, err error) {
	env, err := wasmpack.Envelope(ctx.String(wasmFlag.Name), log.Root())
	if err != nil {
		return nil, nil, err
	}

	abiArgs, err := decodeArgs(ctx.String(argsFlag.Name))
	if err != nil {
		return nil, nil, err
	}

	solPath := ctx.String(solFlag.Name)
	if solPath == "" {
		if len(abiArgs) > 0 {
			return nil, nil, fmt.Errorf("ctorasm: --args requires --sol; there is no constructor to receive them")
		}
		payload, err = evmasm.NoConstructorPrelude(env)
		return payload, env, err
	}

	compiler := solc.New(ctx.String(solcPathFlag.Name))
	assembly, err := compiler.Assembly(solPath)
	if err != nil {
		return nil, nil, err
	}
	payload, err = evmasm.Rewrite([]byte(assembly), env, abiArgs)
	if err != nil {
		return nil, nil, err
	}
	return payload, env, nil
}

func decodeArgs(argsHex string) ([]byte, error) {
	if argsHex == "" {
		return nil, nil
	}
	args, err := hex.DecodeString(strings.TrimPrefix(argsHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ctorasm: malformed --args hex: %w", err)
	}
	return args, nil
}

func maybeDump(ctx *cli.Context, payload []byte) {
	if !ctx.Bool(debugFlag.Name) {
		return
	}
	lines, err := asm.Disassemble(payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, "disassembly failed:", err)
		return
	}
	for _, line := range lines {
		fmt.Fprintln(os.Stderr, line)
	}
}

func generateCommand(ctx *cli.Context) error {
	payload, _, err := buildPayload(ctx)
	if err != nil {
		return err
	}
	maybeDump(ctx, payload)

	out := hex.EncodeToString(payload)
	if path := ctx.String(outputFlag.Name); path != "" {
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("ctorasm: write output: %w", err)
		}
		log.Info("wrote deployment hex", "path", path, "bytes", len(payload))
		return nil
	}
	fmt.Println(out)
	return nil
}

func deployCommand(ctx *cli.Context) error {
	payload, runtimeCode, err := buildPayload(ctx)
	if err != nil {
		return err
	}
	maybeDump(ctx, payload)

	wallet, err := loadWallet(ctx)
	if err != nil {
		return err
	}

	rctx := context.Background()
	driver, err := deploy.NewDriver(rctx, ctx.String(rpcFlag.Name), wallet)
	if err != nil {
		return err
	}
	defer driver.Client.Close()

	result, err := driver.Run(rctx, payload, runtimeCode, ctx.Bool(deployOnlyFlag.Name))
	if err != nil {
		return err
	}
	log.Info("deployment complete", "address", result.ContractAddress, "deployTx", result.DeployTxHash)
	if result.Activated {
		log.Info("activation complete", "activateTx", result.ActivateTxHash)
	}
	return nil
}

func loadWallet(ctx *cli.Context) (*deploy.Wallet, error) {
	switch {
	case ctx.String(privateKeyFlag.Name) != "":
		return deploy.WalletFromHexKey(ctx.String(privateKeyFlag.Name))
	case ctx.String(privateKeyPathFlag.Name) != "":
		return deploy.WalletFromKeyFile(ctx.String(privateKeyPathFlag.Name))
	case ctx.String(keystoreFlag.Name) != "" && ctx.String(keystorePasswordPathFlag.Name) != "":
		return deploy.WalletFromKeystore(ctx.String(keystoreFlag.Name), ctx.String(keystorePasswordPathFlag.Name))
	default:
		return nil, fmt.Errorf("ctorasm: one of --private-key, --private-key-path, or --keystore with --keystore-password-path is required")
	}
}
