package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/intakehq/referral-ocr/internal/assess"
	"github.com/intakehq/referral-ocr/internal/entity"
	"github.com/intakehq/referral-ocr/internal/extract"
	"github.com/intakehq/referral-ocr/internal/normalize"
	"github.com/intakehq/referral-ocr/internal/pipeline"
	"github.com/intakehq/referral-ocr/internal/rules"
)

// extract runs one OCR text file (or stdin) through the pipeline and prints
// the document and assessment as JSON. Useful for tuning rule packs against
// problem scans without standing up the service.
func main() {
	var (
		inPath     = flag.String("in", "-", "OCR text file, or - for stdin")
		confidence = flag.Float64("confidence", -1, "OCR engine confidence, omit if unknown")
		normPath   = flag.String("normalize-config", "", "YAML normalizer config override")
		packPath   = flag.String("rules", "", "JSON overlay rule pack")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if err := run(*inPath, *confidence, *normPath, *packPath); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

func run(inPath string, confidence float64, normPath, packPath string) error {
	raw, err := readInput(inPath)
	if err != nil {
		return err
	}

	normCfg := normalize.DefaultConfig()
	if normPath != "" {
		if normCfg, err = normalize.LoadConfig(normPath); err != nil {
			return err
		}
	}
	normalizer, err := normalize.New(normCfg)
	if err != nil {
		return err
	}

	ruleStore := rules.NewStore()
	if packPath != "" {
		pack, err := rules.LoadPack(packPath)
		if err != nil {
			return err
		}
		if err := ruleStore.Install(pack); err != nil {
			return err
		}
	}

	processor := pipeline.NewProcessor(normalizer, extract.New(ruleStore, nil), assess.New(nil), nil)

	var conf *float64
	if confidence >= 0 {
		conf = &confidence
	}
	doc, verdict, err := processor.Process(context.Background(), string(raw), conf)
	if err != nil {
		return err
	}

	out := struct {
		Document   entity.Document   `json:"document"`
		Assessment entity.Assessment `json:"assessment"`
	}{doc, verdict}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
