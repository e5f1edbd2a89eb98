package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmontoya/filepart/backend/manifest"
	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/cli/output"
	"github.com/lmontoya/filepart/internal"
)

type ChunkCommandOpts struct {
	Prefix     string
	SizeMB     int64
	NoManifest bool
	NoProgress bool
}

func ChunkCommand() *cobra.Command {
	opts := ChunkCommandOpts{}
	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Split a file into numbered part files",
		Long:  "Split a binary or CSV file into numbered part files. The pipeline is picked from the file extension: .csv uses the line-oriented CSV pipeline, .mp3/.mp4/.bin the byte-oriented binary pipeline.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunkCommand(cmd, args[0], &opts)
		},
	}
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Part name prefix (default from config)")
	cmd.Flags().Int64Var(&opts.SizeMB, "size-mb", 0, "Chunk size in megabytes (default from config)")
	cmd.Flags().BoolVar(&opts.NoManifest, "no-manifest", false, "Do not write a manifest beside the parts")
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func runChunkCommand(cmd *cobra.Command, srcPath string, opts *ChunkCommandOpts) error {
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
	chunkSize := sizeMB * 1024 * 1024

	kind := split.Detect(srcPath)
	if kind == split.KindUnsupported {
		// Not an error by contract: report and take no action.
		internal.Warn("unsupported file type, nothing to do", internal.Fields{
			internal.FieldFile: srcPath,
		})
		return nil
	}

	var progress *output.PartProgress
	if !opts.NoProgress && kind == split.KindBinary {
		if info, err := os.Stat(srcPath); err == nil {
			expected := int((info.Size() + chunkSize - 1) / chunkSize)
			progress = output.StartPartProgress("chunking "+srcPath, expected)
		}
	}

	m, res, err := split.Chunk(srcPath, split.Options{
		Prefix:        prefix,
		ChunkSize:     chunkSize,
		WriteManifest: !opts.NoManifest,
		OnPart: func(name string, bytes int64) {
			progress.Increment(name)
		},
	})
	progress.Stop()
	if err != nil {
		return fmt.Errorf("chunk %s: %w", srcPath, err)
	}

	fields := internal.Fields{
		internal.FieldFile:   srcPath,
		internal.FieldPrefix: prefix,
		internal.FieldParts:  res.Parts,
		internal.FieldBytes:  res.Bytes,
	}
	if !opts.NoManifest {
		fields[internal.FieldManifest] = manifest.PathFor(prefix)
		fields[internal.FieldFileID] = m.FileID
	}
	internal.Info("chunking complete", fields)
	return nil
}
