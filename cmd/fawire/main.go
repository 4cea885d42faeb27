// fawire is the one-shot export CLI: build a circuit from a YAML
// definition, evaluate it and write one report document.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/builder"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/export"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	circuitPath := flag.String("circuit", "", "path to circuit definition YAML")
	format := flag.String("format", "csv", "output format (csv, json, xlsx, pdf)")
	outDir := flag.String("out", ".", "output directory")
	baked := flag.Bool("baked", false, "write literal values instead of live formulas (xlsx only)")
	flag.Parse()

	if *showVersion {
		fmt.Println("fawire", Version)
		return
	}
	if *circuitPath == "" {
		log.Fatal("missing -circuit")
	}

	def, err := builder.Load(*circuitPath)
	if err != nil {
		log.Fatalf("load circuit: %v", err)
	}

	tree, params, err := builder.Build(def, builder.NoAttributes{})
	if err != nil {
		log.Fatalf("build circuit: %v", err)
	}
	if params == (models.ParameterSet{}) {
		params = models.DefaultParameters()
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	rep, err := export.Prepare(tree, params, models.ExportMetadata{
		ExportedAt:  time.Now(),
		ProjectName: def.Project,
		ProjectPath: *circuitPath,
		ExportedBy:  user,
	})
	if err != nil {
		log.Fatalf("evaluate circuit: %v", err)
	}

	registry := export.NewRegistry()
	if *baked {
		registry = &export.Registry{}
		registry.Register(export.NewCSVExporter())
		registry.Register(export.NewJSONExporter())
		registry.Register(export.NewWorkbookExporter(export.ModeBaked))
		registry.Register(export.NewPDFExporter())
	}

	exporter, err := registry.GetByName(*format)
	if err != nil {
		log.Fatalf("%v", err)
	}

	base := strings.TrimSuffix(filepath.Base(*circuitPath), filepath.Ext(*circuitPath))
	outPath := filepath.Join(*outDir, base+"-report"+exporter.Ext())
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	if err := registry.Export(exporter.Name(), f, rep); err != nil {
		f.Close()
		os.Remove(outPath)
		log.Fatalf("%v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close output: %v", err)
	}

	s := rep.Summary
	log.Printf("fawire: %d devices, total load %.3fA, end-of-line %.3fV", s.TotalDevices, s.TotalLoad, s.WorstVoltage)
	if !s.IsValid {
		for _, msg := range s.Errors {
			log.Printf("fawire: warning: %s", msg)
		}
	}
	log.Printf("fawire: wrote %s", outPath)
}
