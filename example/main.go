package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdfdiff"
)

func main() {
	cmd := &cli.Command{
		Name:  "pdfdiff",
		Usage: "Compare two PDF files or directories of PDF files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "old",
				Aliases:  []string{"a"},
				Usage:    "Old PDF file or directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "new",
				Aliases:  []string{"b"},
				Usage:    "New PDF file or directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for diff images and reports (default: no images)",
			},
			&cli.IntFlag{
				Name:  "dpi",
				Usage: "Rendering resolution",
				Value: 150,
			},
			&cli.FloatFlag{
				Name:  "threshold-pixel",
				Usage: "Visual-diff ratio floor (0.0-1.0)",
				Value: 0.01,
			},
			&cli.FloatFlag{
				Name:  "threshold-layout",
				Usage: "Layout displacement floor in page units",
				Value: 5.0,
			},
			&cli.FloatFlag{
				Name:  "threshold-color",
				Usage: "Color distance floor (0-441.67)",
				Value: 30.0,
			},
			&cli.BoolFlag{
				Name:  "lab",
				Usage: "Use perceptual Lab color distance instead of RGB",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Write a JSON report next to the diff images",
			},
			&cli.BoolFlag{
				Name:  "merge",
				Usage: "Merge emitted diff images into a single PDF",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker count for directory comparison (default: CPU count)",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Abort a directory comparison on the first failed pair",
			},
		},
		Action: comparePDFs,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func comparePDFs(_ context.Context, cmd *cli.Command) error {
	oldPath := cmd.String("old")
	newPath := cmd.String("new")

	config := pdfdiff.Config{
		ThresholdPixel:  cmd.Float("threshold-pixel"),
		ThresholdLayout: cmd.Float("threshold-layout"),
		ThresholdColor:  cmd.Float("threshold-color"),
		DPI:             int(cmd.Int("dpi")),
		OutputDir:       cmd.String("output-dir"),
	}
	if cmd.Bool("lab") {
		config.ColorMetric = pdfdiff.ColorMetricLab
	}

	// One pdfium instance per batch worker, so every worker can hold an
	// instance for the duration of its pair.
	workers := int(cmd.Int("workers"))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  workers,
		MaxTotal: workers,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	oldInfo, err := os.Stat(oldPath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", oldPath, err)
	}

	if oldInfo.IsDir() {
		return compareDirectories(cmd, pool, config, workers, oldPath, newPath)
	}
	return compareFiles(cmd, pool, config, oldPath, newPath)
}

func compareFiles(cmd *cli.Command, pool pdfium.Pool, config pdfdiff.Config, oldPath, newPath string) error {
	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	comparer := pdfdiff.NewComparerWithConfig(instance, config)
	defer comparer.Close()

	var result *pdfdiff.DocumentResult
	switch strings.ToLower(filepath.Ext(oldPath)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		result, err = comparer.CompareImageFiles(oldPath, newPath)
	default:
		result, err = comparer.CompareFiles(oldPath, newPath)
	}
	if err != nil {
		return fmt.Errorf("failed to compare documents: %w", err)
	}

	printSummary(result)

	if cmd.Bool("json") && config.OutputDir != "" {
		reportPath := filepath.Join(config.OutputDir, "report.json")
		if err := pdfdiff.WriteJSONReport(result, reportPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "JSON report written to %s\n", reportPath)
	}

	if cmd.Bool("merge") && config.OutputDir != "" {
		mergedPath := filepath.Join(config.OutputDir, "differences.pdf")
		if err := pdfdiff.MergeDiffImages(config.OutputDir, mergedPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Merged diff PDF written to %s\n", mergedPath)
	}

	return nil
}

func compareDirectories(cmd *cli.Command, pool pdfium.Pool, config pdfdiff.Config, workers int, oldDir, newDir string) error {
	baseOutput := config.OutputDir

	factory := func(pairName string) (*pdfdiff.Comparer, error) {
		instance, err := pool.GetInstance(time.Second * 30)
		if err != nil {
			return nil, fmt.Errorf("failed to get pdfium instance: %w", err)
		}

		pairConfig := config
		if baseOutput != "" {
			pairConfig.OutputDir = filepath.Join(baseOutput, pairName)
		}
		return pdfdiff.NewComparerWithConfig(instance, pairConfig), nil
	}

	results, err := pdfdiff.CompareDirectories(factory, oldDir, newDir, pdfdiff.BatchOptions{
		Workers:  workers,
		FailFast: cmd.Bool("fail-fast"),
	})
	if err != nil {
		return fmt.Errorf("batch comparison aborted: %w", err)
	}

	failed := 0
	for _, pair := range results {
		switch {
		case pair.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", pair.Name, pair.Err)
		case pair.Result.Summary.HasDifferences:
			fmt.Printf("DIFF %s: %d/%d pages differ\n", pair.Name,
				pair.Result.Summary.PagesWithDifferences, pair.Result.Summary.TotalPages)
		default:
			fmt.Printf("SAME %s\n", pair.Name)
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d pairs failed\n", failed, len(results))
	}
	return nil
}

func printSummary(result *pdfdiff.DocumentResult) {
	summary := result.Summary
	if !summary.HasDifferences {
		fmt.Printf("No differences found across %d pages\n", summary.TotalPages)
		return
	}

	fmt.Printf("%d of %d pages differ\n", summary.PagesWithDifferences, summary.TotalPages)
	fmt.Printf("  text:   %d\n", summary.TextDiffCount)
	fmt.Printf("  layout: %d\n", summary.LayoutDiffCount)
	fmt.Printf("  color:  %d\n", summary.ColorDiffCount)
	fmt.Printf("  font:   %d\n", summary.FontDiffCount)

	for _, page := range result.Pages {
		if !page.HasDifferences {
			continue
		}
		switch {
		case !page.ExistsInOld:
			fmt.Printf("page %d: added\n", page.PageNumber)
		case !page.ExistsInNew:
			fmt.Printf("page %d: removed\n", page.PageNumber)
		default:
			fmt.Printf("page %d: visual ratio %.4f, %d text, %d layout, %d color, %d font\n",
				page.PageNumber, page.Visual.Ratio, len(page.TextDiffs),
				len(page.LayoutDiffs), len(page.ColorDiffs), len(page.FontDiffs))
		}
		for _, note := range page.Notes {
			fmt.Printf("  note: %s\n", note)
		}
	}
}
