package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/conduit-lang/protopool/internal/cli/ui"
	"github.com/conduit-lang/protopool/pkg/descpool"
)

type encodeOptions struct {
	output         string
	text           bool
	includeImports bool
}

// NewEncodeCommand creates the encode command
func NewEncodeCommand() *cobra.Command {
	opts := &encodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode <set.pb>...",
		Short: "Validate descriptor sets and write them back as one set",
		Long: `Build a pool from the given FileDescriptorSets and write its files as a
single FileDescriptorSet. The output is deterministic and includes the oneofs
synthesized for proto3 optional fields.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			return runEncode(s, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&opts.text, "text", false, "write protobuf text format instead of binary")
	cmd.Flags().BoolVar(&opts.includeImports, "include-imports", false, "also write the well-known type files")

	return cmd
}

func runEncode(s *session, paths []string, opts *encodeOptions) error {
	pool, err := s.loadPool(paths)
	if err != nil {
		return err
	}

	data, err := encodeSet(pool, s.baseFiles(), opts)
	if err != nil {
		return err
	}

	if opts.output == "-" || opts.output == "" {
		_, err := s.out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	ui.WriteSuccess(s.errOut, "wrote "+opts.output, s.noColor)
	return nil
}

func encodeSet(pool *descpool.Pool, base int, opts *encodeOptions) ([]byte, error) {
	if opts.includeImports {
		base = 0
	}
	if base == 0 && !opts.text {
		return pool.Encode()
	}

	set := pool.FileDescriptorSet()
	set.File = set.File[base:]
	if opts.text {
		b, err := prototext.MarshalOptions{Multiline: true}.Marshal(set)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file descriptor set: %w", err)
		}
		return b, nil
	}
	return marshalSet(set)
}

func marshalSet(set *descriptorpb.FileDescriptorSet) ([]byte, error) {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file descriptor set: %w", err)
	}
	return b, nil
}
