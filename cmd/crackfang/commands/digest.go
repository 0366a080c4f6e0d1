package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/crackfang/pkg/config"
	"github.com/Sumatoshi-tech/crackfang/pkg/digest"
)

// NewDigestCommand creates the digest command, which prints
// "<md5-hex><TAB><text>" for every argument.
func NewDigestCommand() *cobra.Command {
	var encoding string

	cmd := &cobra.Command{
		Use:   "digest <text>...",
		Short: "Print the MD5 digest of each text",
		Long: `Print the MD5 hex digest of each argument, one line per text.

The text is encoded with --file-encoding before hashing, exactly as crack
encodes its candidates, so the output can seed a hash file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := digest.LookupEncoding(encoding)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			for _, text := range args {
				sum, sumErr := digest.Sum(text, enc)
				if sumErr != nil {
					return fmt.Errorf("%q: %w", text, sumErr)
				}

				fmt.Fprintf(out, "%s\t%s\n", sum, text)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, flagFileEncoding, "e", config.DefaultEncoding, "text encoding applied before hashing")

	return cmd
}
