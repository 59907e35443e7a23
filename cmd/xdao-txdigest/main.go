package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"xdao.co/txdigest/cidutil"
	"xdao.co/txdigest/compliance"
	"xdao.co/txdigest/model"
	"xdao.co/txdigest/txdigest"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "digest":
		return cmdDigest(args[1:], in, out, errOut)
	case "verify":
		return cmdVerify(args[1:], in, out, errOut)
	case "decode":
		return cmdDecode(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], in, out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-txdigest: transaction data digest for secure displays")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-txdigest digest [--legacy] [--json] [--request] [--hash-alg <alg>] <file|->")
	fmt.Fprintln(w, "  xdao-txdigest verify (--digest <hex> | --cid <cid>) [--legacy] [--hash-alg <alg>] <file|->")
	fmt.Fprintln(w, "  xdao-txdigest decode --digest <hex> [--json] <record-hex> [<record-hex> ...]")
	fmt.Fprintln(w, "  xdao-txdigest cid [--legacy] <file|->")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  --class-tag <byte>    record class tag (default 0xDF)")
	fmt.Fprintln(w, "  --subtag-base <byte>  record sub-tag base (default 0x70)")
	fmt.Fprintln(w, "  --log-level <level>   debug traces each record to stderr")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - payloads are a JSON array of single-key objects: [{\"amount\":\"123\"}, ...]")
	fmt.Fprintln(w, "  - --legacy also accepts a flat object: {\"amount\":\"123\", ...}")
	fmt.Fprintln(w, "  - --request reads a {\"payload\":..., \"compliance\":\"strict|permissive\"} envelope")
	fmt.Fprintln(w, "  - every flag has a TXDIGEST_* environment variable; a .env file is read if present")
}

// setup parses the shared config and builds the logger. It returns a non-zero
// exit code when the caller should stop.
func setup(fs *flag.FlagSet, args []string, errOut io.Writer) (Config, *logrus.Logger, int) {
	fs.SetOutput(errOut)
	cfg, err := parseConfig(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Config{}, nil, 2
		}
		fmt.Fprintf(errOut, "config: %v\n", err)
		return Config{}, nil, 2
	}
	logger, err := newLogger(cfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --log-level: %v\n", err)
		return Config{}, nil, 2
	}
	return cfg, logger, 0
}

func readInput(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

func cmdDigest(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	var request bool
	fs.BoolVar(&request, "request", false, "Input is a JSON request envelope")
	cfg, logger, code := setup(fs, args, errOut)
	if code != 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-txdigest digest [flags] <file|->")
		return 2
	}
	params, err := cfg.Params()
	if err != nil {
		fmt.Fprintf(errOut, "invalid tag: %v\n", err)
		return 2
	}

	b, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read payload: %v\n", err)
		return 1
	}

	req := model.DigestRequest{
		Payload:    b,
		Compliance: model.ComplianceMode(compliance.FromLegacy(cfg.Legacy).String()),
		HashAlg:    cfg.HashAlg,
	}
	if request {
		var env model.DigestRequest
		if err := json.Unmarshal(b, &env); err != nil {
			fmt.Fprintf(errOut, "invalid request: %v\n", err)
			return 1
		}
		if env.Compliance == "" {
			env.Compliance = req.Compliance
		}
		if env.HashAlg == "" {
			env.HashAlg = req.HashAlg
		}
		req = env
	}

	resp, err := model.DigestWithParams(req, params)
	if err != nil {
		return reportError(err, "invalid payload", logger, out, errOut, cfg.JSON)
	}
	for _, r := range resp.Records {
		logger.WithFields(logrus.Fields{"position": r.Position, "key": r.Key, "record": r.Hex}).Debug("record encoded")
	}
	logger.WithField("cid", resp.CID).Debug("digest computed")

	if cfg.JSON {
		return writeJSON(out, errOut, resp)
	}
	for _, r := range resp.Records {
		fmt.Fprintf(out, "Record %d: %s (%s)\n", r.Position, r.Hex, r.Key)
	}
	fmt.Fprintf(out, "Digest: %s\n", resp.Digest)
	fmt.Fprintf(out, "CID: %s\n", resp.CID)
	return 0
}

func cmdVerify(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	var digestHex, cidStr string
	fs.StringVar(&digestHex, "digest", "", "Expected digest (hex)")
	fs.StringVar(&cidStr, "cid", "", "Expected record-stream CID (sets the hash algorithm)")
	cfg, logger, code := setup(fs, args, errOut)
	if code != 0 {
		return code
	}
	if (digestHex == "") == (cidStr == "") || fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-txdigest verify (--digest <hex> | --cid <cid>) [flags] <file|->")
		return 2
	}
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(errOut, "invalid tag: %v\n", err)
		return 2
	}

	var expected []byte
	if cidStr != "" {
		alg, digest, err := cidutil.DigestFromCID(cidStr)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --cid: %v\n", err)
			return 2
		}
		logger.WithFields(logrus.Fields{"cid": cidStr, "hashAlg": alg}).Debug("digest taken from cid")
		opts.HashAlg = alg
		expected = digest
	} else {
		expected, err = txdigest.ParseHex(digestHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --digest: %v\n", err)
			return 2
		}
	}

	b, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read payload: %v\n", err)
		return 1
	}
	res, err := txdigest.Verify(b, expected, opts)
	if err != nil {
		return reportError(err, "verify", logger, out, errOut, cfg.JSON)
	}
	if cfg.JSON {
		id, err := res.CID()
		if err != nil {
			return reportError(err, "verify", logger, out, errOut, true)
		}
		return writeJSON(out, errOut, model.DigestCheck{OK: true, Digest: res.DigestHex(), HashAlg: res.HashAlg, CID: id})
	}
	fmt.Fprintf(out, "OK %s\n", res.DigestHex())
	return 0
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	var digestHex string
	fs.StringVar(&digestHex, "digest", "", "Digest the records must hash to (hex)")
	cfg, logger, code := setup(fs, args, errOut)
	if code != 0 {
		return code
	}
	if digestHex == "" || fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: xdao-txdigest decode --digest <hex> <record-hex> [<record-hex> ...]")
		return 2
	}
	params, err := cfg.Params()
	if err != nil {
		fmt.Fprintf(errOut, "invalid tag: %v\n", err)
		return 2
	}

	resp, err := model.VerifyWithParams(model.VerifyRequest{
		Digest:  digestHex,
		Records: fs.Args(),
		HashAlg: cfg.HashAlg,
	}, params)
	if err != nil {
		return reportError(err, "decode", logger, out, errOut, cfg.JSON)
	}
	if cfg.JSON {
		return writeJSON(out, errOut, resp)
	}
	for _, f := range resp.Fields {
		fmt.Fprintf(out, "%d %s: %s\n", f.Position, f.Key, f.Value)
	}
	return 0
}

func cmdCID(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	cfg, logger, code := setup(fs, args, errOut)
	if code != 0 {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-txdigest cid [flags] <file|->")
		return 2
	}
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(errOut, "invalid tag: %v\n", err)
		return 2
	}
	b, err := readInput(fs.Arg(0), in)
	if err != nil {
		fmt.Fprintf(errOut, "read payload: %v\n", err)
		return 1
	}
	res, err := txdigest.DigestWithOptions(b, opts)
	if err != nil {
		return reportError(err, "invalid payload", logger, out, errOut, cfg.JSON)
	}
	id, err := res.CID()
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

// reportError prints a pipeline failure. With --json the coded error goes to
// stdout so callers can branch on its code.
func reportError(err error, prefix string, logger *logrus.Logger, out io.Writer, errOut io.Writer, asJSON bool) int {
	ce := model.MapError(err)
	logger.WithFields(logrus.Fields{"code": ce.Code, "rule": ce.RuleID, "position": ce.Position}).Debug(prefix)
	if asJSON {
		writeJSON(out, errOut, ce)
		return 1
	}
	fmt.Fprintf(errOut, "%s: %v\n", prefix, ce.Message)
	if ce.RuleID != "" {
		fmt.Fprintf(errOut, "  code: %s (%s)\n", ce.Code, ce.RuleID)
	}
	return 1
}

func writeJSON(out io.Writer, errOut io.Writer, v any) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(errOut, "encode json: %v\n", err)
		return 1
	}
	return 0
}
