package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"deal-checker/internal/dto"
	"deal-checker/pkg/utils"
)

var batchFlags struct {
	dir         string
	concurrency int
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every listing in a directory",
	Long: "Reads *.txt files as ad text and *.json files as listings, asks the producer " +
		"for each concurrently, then scores them in file name order.",
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchFlags.dir, "dir", "", "directory with listing files")
	batchCmd.Flags().IntVar(&batchFlags.concurrency, "concurrency", 4, "max concurrent producer calls")
	_ = batchCmd.MarkFlagRequired("dir")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listings, names, err := readListingDir(batchFlags.dir)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		return fmt.Errorf("no .txt or .json listings in %s", batchFlags.dir)
	}

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	results, err := appDep.services.BatchService.AnalyzeBatch(ctx, listings, batchFlags.concurrency)
	for i, res := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", names[i], res.AssessmentSource, res.Summary())
	}
	return err
}

// readListingDir loads listings sorted by file name.
func readListingDir(dir string) ([]dto.Listing, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		listings []dto.Listing
		names    []string
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt":
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			listings = append(listings, dto.Listing{Description: utils.SafeText(string(b))})
		case ".json":
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			var l dto.Listing
			if err := json.Unmarshal(b, &l); err != nil {
				return nil, nil, fmt.Errorf("failed to decode %s: %w", path, err)
			}
			l.Description = utils.SafeText(l.Description)
			listings = append(listings, l)
		default:
			continue
		}
		names = append(names, e.Name())
	}
	return listings, names, nil
}
