package mcp

import (
	"context"
	"fmt"
	"runtime"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/crackfang/pkg/candidate"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
	"github.com/Sumatoshi-tech/crackfang/pkg/engine"
	"github.com/Sumatoshi-tech/crackfang/pkg/report"
	"github.com/Sumatoshi-tech/crackfang/pkg/runner"
)

func (s *Server) handleCrack(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CrackInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	maxLength, err := s.validateCrackInput(input)
	if err != nil {
		return errorResult(err)
	}

	cs, err := crackCharset(input)
	if err != nil {
		return errorResult(err)
	}

	domain, err := s.checkDomain(cs, maxLength)
	if err != nil {
		return errorResult(err)
	}

	enc, err := digest.LookupEncoding(input.Encoding)
	if err != nil {
		return errorResult(err)
	}

	workers := input.Workers
	if workers == 0 {
		workers = s.limits.Workers
	}

	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eng, err := engine.New(engine.Options{
		Charset:   cs,
		Encoding:  enc,
		Logger:    s.logger,
		MaxLength: maxLength,
		Workers:   workers,
	})
	if err != nil {
		return errorResult(err)
	}

	run, err := runner.New(runner.Config{
		Engine:  eng,
		Logger:  s.logger,
		Tracer:  s.tracer,
		Metrics: s.searchMetrics,
	})
	if err != nil {
		return errorResult(err)
	}

	outcome, err := run.Run(ctx, input.Hashes)
	if err != nil {
		return errorResult(fmt.Errorf("crack: %w", err))
	}

	return jsonResult(report.NewSummary(report.Meta{
		Charset:    cs.String(),
		Encoding:   enc.Name(),
		Partition:  string(engine.PartitionBijective),
		DomainSize: domain,
		MaxLength:  maxLength,
		Workers:    workers,
	}, outcome))
}

func (s *Server) validateCrackInput(input CrackInput) (int, error) {
	if len(input.Hashes) == 0 {
		return 0, ErrNoHashes
	}

	if len(input.Hashes) > MaxToolHashes {
		return 0, fmt.Errorf("%w: %d (max %d)", ErrTooManyHashes, len(input.Hashes), MaxToolHashes)
	}

	if input.Workers < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWorkers, input.Workers)
	}

	maxLength := min(defaultToolLength, s.limits.MaxLength)
	if input.MaxLength != nil {
		maxLength = *input.MaxLength
	}

	if maxLength < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, maxLength)
	}

	if maxLength > s.limits.MaxLength {
		return 0, fmt.Errorf("%w: %d (max %d)", ErrLengthTooLarge, maxLength, s.limits.MaxLength)
	}

	return maxLength, nil
}

// checkDomain returns the number of candidates a search over cs up to
// maxLength enumerates, failing when it exceeds the server limit.
func (s *Server) checkDomain(cs candidate.Charset, maxLength int) (uint64, error) {
	domain, err := candidate.DomainSize(cs.Size(), maxLength)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDomainTooLarge, err)
	}

	if domain > s.limits.MaxDomain {
		return 0, fmt.Errorf("%w: %d candidates (max %d)", ErrDomainTooLarge, domain, s.limits.MaxDomain)
	}

	return domain, nil
}

func crackCharset(input CrackInput) (candidate.Charset, error) {
	switch {
	case input.Alphabet != "" && input.Charset != "":
		return candidate.Charset{}, ErrCharsetConflict
	case input.Alphabet != "":
		return candidate.NewCharset(input.Alphabet)
	case input.Charset != "":
		return candidate.FromFlags(input.Charset)
	default:
		return candidate.FromFlags(candidate.DefaultFlags)
	}
}
