package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
)

func handleDigest(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input DigestInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Text) > MaxDigestInputBytes {
		return errorResult(fmt.Errorf("%w: %d bytes (max %d)", ErrTextTooLarge, len(input.Text), MaxDigestInputBytes))
	}

	enc, err := digest.LookupEncoding(input.Encoding)
	if err != nil {
		return errorResult(err)
	}

	sum, err := digest.Sum(input.Text, enc)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(DigestOutput{Digest: sum, Encoding: enc.Name(), Text: input.Text})
}
