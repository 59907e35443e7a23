package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"xdao.co/txdigest/txdigest"
)

// Regenerates the expected .digest, .cid and .records files for every
// top-level .json vector. Vectors named legacy_* are digested in legacy mode.
func main() {
	dir := flag.String("dir", filepath.Join("testdata", "conformance", "txdigest", "txdigest-1"), "Vector directory")
	flag.Parse()

	matches, err := filepath.Glob(filepath.Join(*dir, "*.json"))
	if err != nil {
		panic(err)
	}
	sort.Strings(matches)

	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		payload, err := os.ReadFile(path)
		if err != nil {
			panic(err)
		}
		res, err := txdigest.Digest(payload, strings.HasPrefix(name, "legacy_"))
		if err != nil {
			panic(fmt.Sprintf("%s: %v", name, err))
		}
		cid, err := res.CID()
		if err != nil {
			panic(err)
		}

		var records strings.Builder
		for _, rec := range res.Records {
			records.WriteString(txdigest.Hex(rec))
			records.WriteByte('\n')
		}
		write(filepath.Join(*dir, name+".digest"), res.DigestHex()+"\n")
		write(filepath.Join(*dir, name+".cid"), cid+"\n")
		write(filepath.Join(*dir, name+".records"), records.String())
		fmt.Printf("%s %s\n", name, res.DigestHex())
	}
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		panic(err)
	}
}
