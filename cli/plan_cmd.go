package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/internal"
)

func PlanCommand() *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "plan <plan-file>",
		Short: "Run a batch of chunk jobs from a YAML or JSON plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanCommand(args[0], keepGoing)
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Continue with the remaining jobs after a failure")
	return cmd
}

func runPlanCommand(planPath string, keepGoing bool) error {
	doc, err := loadPlanDocument(planPath)
	if err != nil {
		return err
	}
	jobs, err := doc.resolveJobs()
	if err != nil {
		return err
	}

	var failed int
	for _, job := range jobs {
		if split.Detect(job.Source) == split.KindUnsupported {
			internal.Warn("unsupported file type, job skipped", internal.Fields{
				internal.FieldFile: job.Source,
			})
			continue
		}

		_, res, err := split.Chunk(job.Source, split.Options{
			Prefix:        job.Prefix,
			ChunkSize:     job.SizeMB * 1024 * 1024,
			WriteManifest: job.WriteManifest,
		})
		if err != nil {
			failed++
			internal.Error("chunk job failed", internal.Fields{
				internal.FieldFile:  job.Source,
				internal.FieldError: err.Error(),
			})
			if !keepGoing {
				return fmt.Errorf("chunk %s: %w", job.Source, err)
			}
			continue
		}
		internal.Info("chunk job complete", internal.Fields{
			internal.FieldFile:   job.Source,
			internal.FieldPrefix: job.Prefix,
			internal.FieldParts:  res.Parts,
			internal.FieldBytes:  res.Bytes,
		})
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}
