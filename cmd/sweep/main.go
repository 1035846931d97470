// Command sweep replays one detection log across a grid of
// configuration overrides and reports per-combination acceptance
// counts and timing as CSV.
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/bwierzbo/bumpsetcut-core/internal/config"
	"github.com/bwierzbo/bumpsetcut-core/internal/detect"
	"github.com/bwierzbo/bumpsetcut-core/internal/pipeline"
	"github.com/bwierzbo/bumpsetcut-core/internal/sweep"
)

// frameRecord is one line of the detection log.
type frameRecord struct {
	T          float64            `json:"t"`
	Detections []detect.Detection `json:"detections"`
}

// axisFlags collects repeated -param flags.
type axisFlags []string

func (a *axisFlags) String() string { return fmt.Sprint(*a) }
func (a *axisFlags) Set(s string) error {
	*a = append(*a, s)
	return nil
}

func main() {
	logPath := flag.String("log", "", "Detection log to replay (JSONL, one frame per line)")
	overridesPath := flag.String("overrides", "", "Baseline JSON overrides applied before every combination (optional)")
	output := flag.String("output", "", "Output CSV file (defaults to stdout)")
	var params axisFlags
	flag.Var(&params, "param", "Swept parameter as name=min:max:step or name=v1,v2,... (repeatable)")
	flag.Parse()

	if *logPath == "" {
		flag.Usage()
		log.Fatal("missing required -log")
	}
	if len(params) == 0 {
		flag.Usage()
		log.Fatal("missing required -param (repeat for multiple axes)")
	}

	axes := make([]sweep.Axis, 0, len(params))
	for _, p := range params {
		a, err := sweep.ParseAxis(p)
		if err != nil {
			log.Fatalf("parse -param: %v", err)
		}
		axes = append(axes, a)
	}

	combos, err := sweep.Expand(axes)
	if err != nil {
		log.Fatalf("expand sweep grid: %v", err)
	}
	log.Printf("sweeping %d combinations over %s", len(combos), *logPath)

	base := config.Default()
	if *overridesPath != "" {
		o, err := config.LoadOverrides(*overridesPath)
		if err != nil {
			log.Fatalf("load overrides: %v", err)
		}
		base = base.With(o)
	}

	// The log is read once; replays run from memory.
	frames, err := loadLog(*logPath)
	if err != nil {
		log.Fatalf("load %s: %v", *logPath, err)
	}
	log.Printf("loaded %d frames", len(frames))

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("create %s: %v", *output, err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	header := make([]string, 0, len(axes)+5)
	for _, a := range axes {
		header = append(header, a.Name)
	}
	header = append(header, "tracks", "accepted", "acceptance_rate", "frames", "elapsed_ms")
	if err := w.Write(header); err != nil {
		log.Fatalf("write CSV header: %v", err)
	}

	var rates []float64
	for i, combo := range combos {
		cfg := base.With(combo.Overrides)
		res, err := runCombination(cfg, frames)
		if err != nil {
			log.Fatalf("combination %d/%d: %v", i+1, len(combos), err)
		}
		rates = append(rates, res.rate)

		row := make([]string, 0, len(header))
		for _, v := range combo.Values {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		row = append(row,
			strconv.Itoa(res.tracks),
			strconv.Itoa(res.accepted),
			strconv.FormatFloat(res.rate, 'f', 4, 64),
			strconv.Itoa(len(frames)),
			strconv.FormatInt(res.elapsed.Milliseconds(), 10))
		if err := w.Write(row); err != nil {
			log.Fatalf("write CSV row: %v", err)
		}
		log.Printf("combination %d/%d: tracks=%d accepted=%d (%.1f%%) in %v",
			i+1, len(combos), res.tracks, res.accepted, 100*res.rate, res.elapsed.Round(time.Millisecond))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush CSV: %v", err)
	}

	s := sweep.Summarize(rates)
	log.Printf("acceptance rate over %d combinations: mean=%.4f stddev=%.4f min=%.4f max=%.4f",
		s.N, s.Mean, s.Stddev, s.Min, s.Max)
}

type comboResult struct {
	tracks   int
	accepted int
	rate     float64
	elapsed  time.Duration
}

func runCombination(cfg *config.Config, frames []frameRecord) (comboResult, error) {
	p, err := pipeline.New(cfg)
	if err != nil {
		return comboResult{}, err
	}

	start := time.Now()
	for i, fr := range frames {
		if err := p.ProcessFrame(fr.Detections, fr.T); err != nil {
			return comboResult{}, fmt.Errorf("frame %d: %w", i+1, err)
		}
	}

	tracks := p.DrainFinished()
	tracks = append(tracks, p.LiveTracks()...)

	res := comboResult{tracks: len(tracks)}
	for _, tr := range tracks {
		if p.Evaluate(tr.History).Accept {
			res.accepted++
		}
	}
	if res.tracks > 0 {
		res.rate = float64(res.accepted) / float64(res.tracks)
	}
	res.elapsed = time.Since(start)
	return res, nil
}

func loadLog(path string) ([]frameRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var frames []frameRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec frameRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(frames)+1, err)
		}
		frames = append(frames, rec)
	}
	return frames, sc.Err()
}
