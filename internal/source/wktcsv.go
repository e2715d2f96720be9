package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geostitch/geostitch/internal/geo"
)

// WKTPointCSV loads a directory of CSV files sharing one schema, each with a
// WKT-encoded geometry column. Files are parsed concurrently but the output
// order is deterministic: sorted by file name, then row order within a file.
// The resulting collection has no CRS until the caller assigns one; a bare
// WKT column says nothing about its reference system.
type WKTPointCSV struct {
	Dir            string
	Pattern        string
	GeometryColumn string

	// Workers bounds the number of files parsed in parallel. Zero or
	// negative means one worker per file.
	Workers int
}

// LoadReport accounts for rows dropped during a load. Rows counts every data
// row read, including skipped ones. Per-record geometry problems are
// recoverable: the row is skipped and counted, never fatal.
type LoadReport struct {
	Files            int
	Rows             int
	SkippedEmpty     int
	SkippedMalformed int
}

type fileResult struct {
	features []geo.Feature
	report   LoadReport
	err      error
}

// Load enumerates matching files, parses each independently and concatenates
// the results in file-name order.
func (s *WKTPointCSV) Load() (geo.FeatureCollection, LoadReport, error) {
	pattern := filepath.Join(s.Dir, s.Pattern)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return geo.FeatureCollection{}, LoadReport{}, fmt.Errorf("wkt csv %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return geo.FeatureCollection{}, LoadReport{}, fmt.Errorf("wkt csv %s: no files match: %w", pattern, geo.ErrSourceNotFound)
	}
	sort.Strings(files)

	workers := s.Workers
	if workers <= 0 || workers > len(files) {
		workers = len(files)
	}

	results := make([]fileResult, len(files))
	jobs := make(chan int, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.parseFile(files[i])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := geo.FeatureCollection{CRS: geo.CRSUnknown}
	report := LoadReport{Files: len(files)}
	for i, res := range results {
		if res.err != nil {
			return geo.FeatureCollection{}, LoadReport{}, fmt.Errorf("wkt csv %s: %w", files[i], res.err)
		}
		out.Features = append(out.Features, res.features...)
		report.Rows += res.report.Rows
		report.SkippedEmpty += res.report.SkippedEmpty
		report.SkippedMalformed += res.report.SkippedMalformed
	}

	log.Info().
		Int("files", report.Files).
		Int("features", out.Len()).
		Int("skipped_empty", report.SkippedEmpty).
		Int("skipped_malformed", report.SkippedMalformed).
		Msg("WKT CSV directory loaded")

	return out, report, nil
}

// parseFile reads one CSV file. Rows with an empty geometry column are
// dropped silently (counted); rows whose WKT cannot be parsed are skipped
// with a diagnostic so one bad record never aborts the batch.
func (s *WKTPointCSV) parseFile(path string) fileResult {
	f, err := os.Open(path)
	if err != nil {
		return fileResult{err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return fileResult{err: err}
	}
	if len(records) == 0 {
		return fileResult{}
	}

	header := records[0]
	geomIdx := -1
	for i, h := range header {
		if h == s.GeometryColumn {
			geomIdx = i
			break
		}
	}
	if geomIdx == -1 {
		return fileResult{err: fmt.Errorf("geometry column %q not in header", s.GeometryColumn)}
	}

	var res fileResult
	for rowNum, row := range records[1:] {
		res.report.Rows++
		if geomIdx >= len(row) {
			res.report.SkippedEmpty++
			continue
		}

		raw := strings.TrimSpace(row[geomIdx])
		if raw == "" {
			res.report.SkippedEmpty++
			continue
		}

		g, err := wkt.Unmarshal(raw)
		if err != nil {
			res.report.SkippedMalformed++
			log.Warn().
				Str("file", path).
				Int("row", rowNum+2).
				Err(fmt.Errorf("%w: %v", geo.ErrMalformedGeometry, err)).
				Msg("Skipping row with unparseable WKT")
			continue
		}

		attrs := make(geojson.Properties, len(header)-1)
		for i, h := range header {
			if i == geomIdx || i >= len(row) {
				continue
			}
			attrs[h] = row[i]
		}

		res.features = append(res.features, geo.Feature{
			Geometry:   g,
			Attributes: attrs,
			CRS:        geo.CRSUnknown,
		})
	}

	return res
}
