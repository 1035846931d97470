// Command replay runs the full tracking pipeline over a recorded
// detection log (JSONL, one frame per line) and prints the gate
// decision for every track it produced. It can optionally persist the
// session to SQLite, render per-track PNGs, and write an HTML report.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/bwierzbo/bumpsetcut-core/internal/ballistics"
	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/detect"
	"github.com/bwierzbo/bumpsetcut-core/internal/export"
	"github.com/bwierzbo/bumpsetcut-core/internal/monitoring"
	"github.com/bwierzbo/bumpsetcut-core/internal/pipeline"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
	"github.com/bwierzbo/bumpsetcut-core/internal/trackdb"
)

// frameRecord is one line of the detection log.
type frameRecord struct {
	T          float64            `json:"t"`
	Detections []detect.Detection `json:"detections"`
}

func main() {
	logPath := flag.String("log", "", "Detection log to replay (JSONL, one frame per line)")
	overridesPath := flag.String("overrides", "", "JSON config overrides file (optional)")
	dbPath := flag.String("db", "", "SQLite path to persist the session (optional)")
	plotsDir := flag.String("plots", "", "Directory for per-track PNGs (optional)")
	reportPath := flag.String("report", "", "HTML report output path (optional)")
	notes := flag.String("notes", "", "Free-form session notes stored with the session")
	verbose := flag.Bool("v", false, "Enable per-frame debug logging")
	flag.Parse()

	if *logPath == "" {
		flag.Usage()
		log.Fatal("missing required -log")
	}
	if *verbose {
		monitoring.SetDebugLogger(log.Printf)
	}

	cfg := config.Default()
	if *overridesPath != "" {
		o, err := config.LoadOverrides(*overridesPath)
		if err != nil {
			log.Fatalf("load overrides: %v", err)
		}
		cfg = cfg.With(o)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	start := time.Now()
	frames, err := replayLog(p, *logPath)
	if err != nil {
		log.Fatalf("replay %s: %v", *logPath, err)
	}
	elapsed := time.Since(start)

	// Everything still live at EOF is final too.
	tracks := p.DrainFinished()
	tracks = append(tracks, p.LiveTracks()...)
	sort.Slice(tracks, func(i, j int) bool {
		if tracks[i].FirstT != tracks[j].FirstT {
			return tracks[i].FirstT < tracks[j].FirstT
		}
		return tracks[i].ID < tracks[j].ID
	})

	entries := make([]export.ReportEntry, 0, len(tracks))
	accepted := 0
	for _, tr := range tracks {
		d := p.Evaluate(tr.History)
		if d.Accept {
			accepted++
		}
		entries = append(entries, export.ReportEntry{Track: tr, Decision: d})
		printDecision(tr, d)
	}

	dm, tm := p.Metrics()
	log.Printf("replayed %d frames in %v: %d detections, %d tracks (%d accepted), %d spawns, %d prunes",
		frames, elapsed.Round(time.Millisecond), dm.In, len(tracks), accepted, tm.Spawns, tm.Prunes)

	if *dbPath != "" {
		if err := persist(*dbPath, *logPath, *notes, cfg, entries); err != nil {
			log.Fatalf("persist session: %v", err)
		}
		log.Printf("session stored in %s", *dbPath)
	}

	if *plotsDir != "" {
		for _, e := range entries {
			if err := export.PlotTrack(*plotsDir, e.Track); err != nil {
				log.Fatalf("plot track %s: %v", e.Track.ID, err)
			}
		}
		log.Printf("wrote %d track plots to %s", len(entries), *plotsDir)
	}

	if *reportPath != "" {
		f, err := os.Create(*reportPath)
		if err != nil {
			log.Fatalf("create report: %v", err)
		}
		title := fmt.Sprintf("Replay of %s", *logPath)
		if err := export.WriteReport(f, title, entries); err != nil {
			f.Close()
			log.Fatalf("write report: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("close report: %v", err)
		}
		log.Printf("wrote report to %s", *reportPath)
	}
}

// replayLog feeds every frame of the JSONL log through the pipeline
// and returns the frame count.
func replayLog(p *pipeline.Pipeline, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	frames := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec frameRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return frames, fmt.Errorf("frame %d: %w", frames+1, err)
		}
		if err := p.ProcessFrame(rec.Detections, rec.T); err != nil {
			return frames, fmt.Errorf("frame %d: %w", frames+1, err)
		}
		frames++
	}
	return frames, sc.Err()
}

func printDecision(tr track.Track, d ballistics.GateDecision) {
	status := "reject"
	if d.Accept {
		status = "ACCEPT"
	}
	extra := ""
	if d.Classification != nil {
		extra = fmt.Sprintf(" movement=%s", d.Classification.Type)
	}
	fmt.Printf("%s  %s  conf=%.3f  samples=%d  span=%.2fs  reason=%q%s\n",
		tr.ID, status, d.Confidence, len(tr.History), tr.Duration(), d.Reason, extra)
}

func persist(dbPath, source, notes string, cfg *config.Config, entries []export.ReportEntry) error {
	db, err := trackdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	sid, err := db.StartSession(ctx, float64(time.Now().UnixNano())/1e9, source, notes, cfg)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := db.InsertTrack(ctx, sid, e.Track); err != nil {
			return err
		}
		if err := db.InsertDecision(ctx, sid, e.Track.ID, e.Decision); err != nil {
			return err
		}
	}
	log.Printf("session id: %s", sid)
	return nil
}
