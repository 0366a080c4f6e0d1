// Package hashfile reads target hash lists: one hash per line, decoded from
// the file's text encoding and trimmed of surrounding whitespace.
package hashfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/transform"

	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
)

// maxLineBytes bounds a single line of the hash file.
const maxLineBytes = 1 << 20

// Read returns every line of r as a target, in order. Blank and malformed
// lines are kept; they are valid targets that never match.
func Read(r io.Reader, enc digest.Encoding) ([]string, error) {
	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	var hashes []string

	for scanner.Scan() {
		hashes = append(hashes, strings.TrimSpace(scanner.Text()))
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return nil, fmt.Errorf("read hashes: %w", scanErr)
	}

	return hashes, nil
}

// ReadFile reads the hash list at path.
func ReadFile(path string, enc digest.Encoding) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hash file: %w", err)
	}
	defer f.Close()

	hashes, err := Read(f, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return hashes, nil
}

// IsMD5Hex reports whether s is a 32-digit hex string, in either case.
func IsMD5Hex(s string) bool {
	return digest.ParseTarget(s).Valid()
}
