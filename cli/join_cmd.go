package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lmontoya/filepart/backend/manifest"
	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/internal"
)

type JoinCommandOpts struct {
	Out          string
	Ext          string
	CSV          bool
	ManifestPath string
}

func JoinCommand() *cobra.Command {
	opts := JoinCommandOpts{}
	cmd := &cobra.Command{
		Use:   "join <prefix>",
		Short: "Reassemble a file from its numbered parts",
		Long:  "Reassemble the original file from parts sharing a prefix. When a manifest is present it drives the join; otherwise parts are probed upward from index 1 and the first missing index ends the join.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoinCommand(args[0], &opts)
		},
	}
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (default output<ext> or output.csv)")
	cmd.Flags().StringVar(&opts.Ext, "ext", "", "Part extension used when chunking, e.g. .bin (probe mode, binary)")
	cmd.Flags().BoolVar(&opts.CSV, "csv", false, "Join CSV parts (probe mode)")
	cmd.Flags().StringVar(&opts.ManifestPath, "manifest", "", "Explicit manifest path (default <prefix>.manifest.toml when present)")
	return cmd
}

func runJoinCommand(prefix string, opts *JoinCommandOpts) error {
	manifestPath := opts.ManifestPath
	if manifestPath == "" && manifest.Exists(prefix) {
		manifestPath = manifest.PathFor(prefix)
	}

	if manifestPath != "" {
		return joinWithManifest(prefix, manifestPath, opts)
	}
	return joinByProbing(prefix, opts)
}

func joinWithManifest(prefix, manifestPath string, opts *JoinCommandOpts) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	outPath := opts.Out
	if outPath == "" {
		outPath = split.DefaultOutputName(kindOf(m), m.OriginalExtension)
	}

	res, err := split.Join(m, filepath.Dir(manifestPath), outPath, nil)
	if err != nil {
		return fmt.Errorf("join %s: %w", prefix, err)
	}
	internal.Info("join complete", internal.Fields{
		internal.FieldPrefix: prefix,
		internal.FieldParts:  res.Parts,
		internal.FieldBytes:  res.Bytes,
		internal.FieldOutput: outPath,
	})
	return nil
}

func joinByProbing(prefix string, opts *JoinCommandOpts) error {
	var (
		res *split.Result
		err error
		out string
	)
	switch {
	case opts.CSV:
		out = opts.Out
		if out == "" {
			out = split.DefaultOutputName(split.KindCSV, "")
		}
		res, err = split.NewCSVJoiner().Join(prefix, out)
	default:
		if opts.Ext == "" {
			return errors.New("probe join needs --ext (or --csv) when no manifest is present")
		}
		out = opts.Out
		if out == "" {
			out = split.DefaultOutputName(split.KindBinary, opts.Ext)
		}
		res, err = split.NewBinaryJoiner(opts.Ext).Join(prefix, out)
	}
	if err != nil {
		return fmt.Errorf("join %s: %w", prefix, err)
	}
	if res.Parts == 0 {
		internal.Warn("no parts found, output is empty", internal.Fields{
			internal.FieldPrefix: prefix,
			internal.FieldOutput: out,
		})
		return nil
	}
	internal.Info("join complete", internal.Fields{
		internal.FieldPrefix: prefix,
		internal.FieldParts:  res.Parts,
		internal.FieldBytes:  res.Bytes,
		internal.FieldOutput: out,
	})
	return nil
}

func kindOf(m *manifest.Manifest) split.Kind {
	if m.Kind == manifest.KindCSV {
		return split.KindCSV
	}
	return split.KindBinary
}
