package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameCrack  = "md5_crack"
	ToolNameDigest = "md5_digest"
)

// Request limits.
const (
	// MaxToolLength is the default cap on md5_crack max_length.
	MaxToolLength = 5
	// MaxToolHashes bounds the number of hashes in one md5_crack call.
	MaxToolHashes = 64
	// MaxToolDomain is the default cap on the number of candidates one
	// md5_crack search may enumerate. Every charset flag combination at
	// MaxToolLength fits.
	MaxToolDomain uint64 = 10_000_000_000
	// MaxDigestInputBytes bounds md5_digest text (1 MB).
	MaxDigestInputBytes = 1 << 20

	defaultToolLength = 4
)

// Sentinel errors for tool input validation.
var (
	// ErrNoHashes indicates the hashes parameter is empty.
	ErrNoHashes = errors.New("hashes parameter is required and must not be empty")
	// ErrTooManyHashes indicates more hashes than MaxToolHashes.
	ErrTooManyHashes = errors.New("too many hashes")
	// ErrLengthTooLarge indicates max_length above the server limit.
	ErrLengthTooLarge = errors.New("max_length exceeds server limit")
	// ErrInvalidLength indicates a negative max_length.
	ErrInvalidLength = errors.New("max_length must not be negative")
	// ErrInvalidWorkers indicates a negative worker count.
	ErrInvalidWorkers = errors.New("workers must not be negative")
	// ErrDomainTooLarge indicates a charset and max_length whose search
	// domain exceeds the server limit.
	ErrDomainTooLarge = errors.New("search domain exceeds server limit")
	// ErrCharsetConflict indicates both charset and alphabet were given.
	ErrCharsetConflict = errors.New("charset and alphabet are mutually exclusive")
	// ErrTextTooLarge indicates md5_digest text above MaxDigestInputBytes.
	ErrTextTooLarge = errors.New("text exceeds maximum size")
)

// Limits bounds md5_crack requests.
type Limits struct {
	// MaxLength caps max_length. Zero uses MaxToolLength.
	MaxLength int
	// MaxDomain caps the candidates of one search. Zero uses MaxToolDomain.
	MaxDomain uint64
	// Workers is used when a request does not set workers. Zero uses
	// GOMAXPROCS.
	Workers int
}

func (l Limits) withDefaults() Limits {
	if l.MaxLength <= 0 {
		l.MaxLength = MaxToolLength
	}

	if l.MaxDomain == 0 {
		l.MaxDomain = MaxToolDomain
	}

	if l.Workers < 0 {
		l.Workers = 0
	}

	return l
}

// CrackInput is the input schema for the md5_crack tool.
type CrackInput struct {
	Alphabet  string   `json:"alphabet,omitempty"   jsonschema:"explicit candidate symbols, in enumeration order"`
	Charset   string   `json:"charset,omitempty"    jsonschema:"charset flags: a lowercase, A uppercase, 1 digits, s specials (default aA1)"`
	Encoding  string   `json:"encoding,omitempty"   jsonschema:"text encoding used to hash candidates (default utf-8)"`
	Hashes    []string `json:"hashes"               jsonschema:"MD5 hex digests to invert"`
	MaxLength *int     `json:"max_length,omitempty" jsonschema:"longest candidate to try (default 4)"`
	Workers   int      `json:"workers,omitempty"    jsonschema:"parallel workers (default: all cores)"`
}

// DigestInput is the input schema for the md5_digest tool.
type DigestInput struct {
	Encoding string `json:"encoding,omitempty" jsonschema:"text encoding applied before hashing (default utf-8)"`
	Text     string `json:"text"               jsonschema:"text to hash"`
}

// DigestOutput is the md5_digest result.
type DigestOutput struct {
	Digest   string `json:"digest"`
	Encoding string `json:"encoding"`
	Text     string `json:"text"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
