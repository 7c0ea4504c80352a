// Command nest packs part outlines onto stock sheets and exports per-sheet
// layout SVGs, a CSV manifest, and an optional utilization chart.
//
// Usage:
//
//	nest -parts parts.json -out layouts/ [-config machine.json]
//
// The parts file is a JSON array of outlines: name, width, height,
// quantity, optional laminate id, grain constraint, and load direction.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/open-ez/foamcam/internal/config"
	"github.com/open-ez/foamcam/internal/nesting"
	"github.com/open-ez/foamcam/internal/runlog"
)

func main() {
	partsPath := flag.String("parts", "", "part outlines JSON (required)")
	outDir := flag.String("out", "", "output directory (required)")
	configPath := flag.String("config", "", "machine config JSON (optional)")
	grainArrows := flag.Bool("grain-arrows", true, "draw grain orientation arrows")
	respectGrain := flag.Bool("respect-grain", true, "rotate parts to satisfy grain constraints")
	utilization := flag.Bool("plot", false, "write per-sheet utilization chart")
	dbPath := flag.String("db", "", "run-log sqlite database (optional)")
	flag.Parse()

	if *partsPath == "" || *outDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	outlines, err := loadOutlines(*partsPath)
	if err != nil {
		log.Fatalf("load parts: %v", err)
	}

	sheets := make([]nesting.StockSheet, len(cfg.StockSheets))
	for i, s := range cfg.StockSheets {
		sheets[i] = nesting.StockSheet{Width: s.Width, Height: s.Height}
	}

	packer := &nesting.Packer{
		Sheets:        sheets,
		Margin:        cfg.GetMargin(),
		Spacing:       cfg.GetSpacing(),
		SheetGrainDeg: cfg.GetSheetGrainDeg(),
		RespectGrain:  *respectGrain,
	}
	placements, err := packer.Pack(outlines)
	if err != nil {
		log.Fatalf("pack: %v", err)
	}

	exporter := &nesting.Exporter{
		Sheets:             sheets,
		DogboneRadius:      cfg.GetDogboneRadius(),
		FilletRadius:       cfg.GetFilletRadius(),
		EngravingDepth:     cfg.GetEngravingDepth(),
		SheetGrainDeg:      cfg.GetSheetGrainDeg(),
		IncludeGrainArrows: *grainArrows,
		CutOrders:          cfg.CutOrders,
	}
	manifestPath, err := exporter.Export(placements, *outDir)
	if err != nil {
		log.Fatalf("export: %v", err)
	}

	sheetsUsed := 0
	for _, pl := range placements {
		if pl.Sheet+1 > sheetsUsed {
			sheetsUsed = pl.Sheet + 1
		}
	}
	log.Printf("placed %d parts on %d sheet(s); manifest at %s",
		len(placements), sheetsUsed, manifestPath)

	if *utilization {
		plotPath, err := exporter.UtilizationPlot(placements, *outDir)
		if err != nil {
			log.Fatalf("utilization plot: %v", err)
		}
		log.Printf("wrote %s", plotPath)
	}

	if *dbPath != "" {
		store, err := runlog.Open(*dbPath)
		if err != nil {
			log.Fatalf("open run log: %v", err)
		}
		defer store.Close()
		err = store.Record(runlog.Run{
			RunID:      uuid.NewString(),
			Kind:       runlog.KindNest,
			Parts:      len(placements),
			SheetsUsed: sheetsUsed,
			OutputPath: manifestPath,
			Notes:      fmt.Sprintf("outlines=%s", strings.TrimSpace(*partsPath)),
		})
		if err != nil {
			log.Fatalf("record run: %v", err)
		}
	}
}

func loadOutlines(path string) ([]nesting.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var outlines []nesting.Outline
	if err := json.Unmarshal(data, &outlines); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return outlines, nil
}
