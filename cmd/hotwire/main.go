// Command hotwire generates a synchronized 4-axis hot-wire G-code program
// from a pair of 2D section outlines.
//
// Usage:
//
//	hotwire -root root.json -tip tip.json -out wing.tap [-config machine.json]
//
// Section files are JSON arrays of {"x": .., "y": ..} points describing a
// closed loop. The optional run-log database records provenance per run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/open-ez/foamcam/internal/config"
	"github.com/open-ez/foamcam/internal/fsutil"
	"github.com/open-ez/foamcam/internal/geom"
	"github.com/open-ez/foamcam/internal/hotwire"
	"github.com/open-ez/foamcam/internal/runlog"
	"github.com/open-ez/foamcam/internal/units"
)

func main() {
	rootPath := flag.String("root", "", "root section outline (JSON points, required)")
	tipPath := flag.String("tip", "", "tip section outline (JSON points, required)")
	outPath := flag.String("out", "", "output G-code file (required)")
	configPath := flag.String("config", "", "machine config JSON (optional)")
	material := flag.String("material", config.MaterialStyrofoam, "foam material for kerf lookup")
	stations := flag.Int("stations", 0, "override synchronized station count")
	dbPath := flag.String("db", "", "run-log sqlite database (optional)")
	flag.Parse()

	if *rootPath == "" || *tipPath == "" || *outPath == "" {
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

	sys, err := units.Parse(cfg.GetUnits())
	if err != nil {
		log.Fatalf("config units: %v", err)
	}

	rootCurve, err := loadSection(*rootPath)
	if err != nil {
		log.Fatalf("load root section: %v", err)
	}
	tipCurve, err := loadSection(*tipPath)
	if err != nil {
		log.Fatalf("load tip section: %v", err)
	}

	kerf, known := cfg.KerfFor(*material)
	if !known {
		log.Printf("material %q has no kerf entry; using default %.4f", *material, kerf)
	}

	n := cfg.GetStations()
	if *stations > 0 {
		n = *stations
	}

	job := hotwire.Job{
		RootName:     sectionName(*rootPath),
		TipName:      sectionName(*tipPath),
		Material:     *material,
		Kerf:         kerf,
		BaseFeed:     cfg.GetFeedRate(),
		LeadDistance: cfg.GetLeadDistance(),
		SafeHeight:   cfg.GetSafeHeight(),
		Stations:     n,
		PreheatDwell: cfg.GetPreheatDwell(),
		Units:        sys,
	}

	cut, err := job.Build(rootCurve, tipCurve)
	if err != nil {
		log.Fatalf("build cut path: %v", err)
	}
	for _, w := range cut.Warnings {
		log.Printf("warning: %s", w)
	}

	runID := uuid.NewString()
	if err := job.Write(fsutil.OS{}, *outPath, cut, runID, time.Now()); err != nil {
		log.Fatalf("write program: %v", err)
	}
	log.Printf("wrote %s (%d stations, kerf %.4f, run %s)", *outPath, len(cut.Root), kerf, runID)

	if *dbPath != "" {
		store, err := runlog.Open(*dbPath)
		if err != nil {
			log.Fatalf("open run log: %v", err)
		}
		defer store.Close()
		err = store.Record(runlog.Run{
			RunID:      runID,
			Kind:       runlog.KindHotWire,
			Material:   *material,
			Kerf:       kerf,
			BaseFeed:   job.BaseFeed,
			Stations:   len(cut.Root),
			OutputPath: *outPath,
			Notes:      strings.Join(cut.Warnings, "; "),
		})
		if err != nil {
			log.Fatalf("record run: %v", err)
		}
	}
}

type sectionPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// loadSection reads a JSON point loop into a discretizable curve.
func loadSection(path string) (geom.Curve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pts []sectionPoint
	if err := json.Unmarshal(data, &pts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	loop := make(geom.Polyline, len(pts))
	for i, p := range pts {
		loop[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	return loop, nil
}

func sectionName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
