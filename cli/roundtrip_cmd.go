package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/internal"
)

type RoundTripCommandOpts struct {
	Prefix string
	SizeMB int64
	Out    string
}

// RoundTripCommand chunks a file and immediately reassembles it, the original
// one-shot workflow. Chunk and join stay independently invokable through their
// own commands.
func RoundTripCommand() *cobra.Command {
	opts := RoundTripCommandOpts{}
	cmd := &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Chunk a file and immediately reassemble it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundTripCommand(cmd, args[0], &opts)
		},
	}
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Part name prefix (default from config)")
	cmd.Flags().Int64Var(&opts.SizeMB, "size-mb", 0, "Chunk size in megabytes (default from config)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Reassembled output path (default output<ext> or output.csv)")
	return cmd
}

func runRoundTripCommand(cmd *cobra.Command, srcPath string, opts *RoundTripCommandOpts) error {
	cfg := GetAppConfig(cmd)

	prefix := opts.Prefix
	if prefix == "" && cfg != nil {
		prefix = cfg.ChunkPrefix
	}
	sizeMB := opts.SizeMB
	if sizeMB <= 0 && cfg != nil {
		sizeMB = cfg.ChunkSizeMB
	}
	if prefix == "" || sizeMB <= 0 {
		return errors.New("a part prefix and a positive chunk size are required")
	}

	kind := split.Detect(srcPath)
	if kind == split.KindUnsupported {
		internal.Warn("unsupported file type, nothing to do", internal.Fields{
			internal.FieldFile: srcPath,
		})
		return nil
	}

	m, chunkRes, err := split.Chunk(srcPath, split.Options{
		Prefix:    prefix,
		ChunkSize: sizeMB * 1024 * 1024,
	})
	if err != nil {
		return fmt.Errorf("chunk %s: %w", srcPath, err)
	}
	internal.Info("chunking complete", internal.Fields{
		internal.FieldFile:   srcPath,
		internal.FieldPrefix: prefix,
		internal.FieldParts:  chunkRes.Parts,
		internal.FieldBytes:  chunkRes.Bytes,
	})

	outPath := opts.Out
	if outPath == "" {
		outPath = split.DefaultOutputName(kind, m.OriginalExtension)
	}

	// The manifest from the chunk pass drives the join directly; nothing is
	// re-read from disk to find the parts.
	m.Prefix = prefix
	joinRes, err := split.Join(m, "", outPath, nil)
	if err != nil {
		return fmt.Errorf("join %s: %w", prefix, err)
	}
	internal.Info("reassembly complete", internal.Fields{
		internal.FieldPrefix: prefix,
		internal.FieldParts:  joinRes.Parts,
		internal.FieldOutput: outPath,
	})
	return nil
}
