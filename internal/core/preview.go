package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/feedmap/internal/logging"
	"github.com/JonMunkholm/feedmap/internal/mapping"
)

// MaxPreviewRecords caps the records returned by Preview.
const MaxPreviewRecords = 50

// Inspect describes doc's shape. chosen is the format the user picked, used
// only for the mismatch hint; pass "" when none is chosen yet.
func Inspect(doc any, chosen mapping.Format) Inspection {
	paths := mapping.EnumeratePaths(doc)
	if paths == nil {
		paths = []string{}
	}
	return Inspection{
		SuggestedFormat:   mapping.SuggestFormat(doc),
		LooksPositional:   mapping.LooksPositional(doc),
		FormatMismatch:    chosen != "" && mapping.FormatMismatch(doc, chosen),
		Paths:             paths,
		PositionalLength:  mapping.PositionalLength(doc),
		PositionalSamples: mapping.PositionalSamples(doc),
	}
}

// InspectSource fetches src (through the sample cache) and inspects it.
func (s *Service) InspectSource(ctx context.Context, src Source, refresh bool) (*Inspection, error) {
	sample, err := s.FetchSample(ctx, src, !refresh)
	if err != nil {
		return nil, err
	}
	in := Inspect(sample.Document, "")
	return &in, nil
}

// Preview evaluates req.Config against a document without persisting
// anything. Configuration problems become warnings, not errors, so the
// wizard can show partial results while the user is still editing.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	start := time.Now()
	log := logging.FromContext(ctx)

	cfg := req.Config
	cfg.Normalize()

	doc, err := s.previewDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &PreviewResponse{
		Inspection: Inspect(doc, cfg.Format),
		Warnings:   []string{},
	}
	if err := cfg.Validate(); err != nil {
		resp.Warnings = append(resp.Warnings, strings.Split(err.Error(), "\n")...)
	}
	if resp.Inspection.FormatMismatch {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("document looks %s but format is %s", resp.Inspection.SuggestedFormat, cfg.Format))
	}

	var dir mapping.Directory
	if cfg.TargetMode == mapping.TargetCollection {
		loaded, err := s.LoadDirectory(ctx)
		if err != nil {
			log.Warn("preview without entity directory", "error", err)
			resp.Warnings = append(resp.Warnings, "entity directory unavailable; names shown as placeholders")
		} else {
			dir = loaded
		}
	}

	resp.Result = evaluate(doc, cfg, dir)
	resp.Warnings = append(resp.Warnings, resultWarnings(resp.Result, cfg)...)

	if resp.Result != nil && len(resp.Result.Records) > MaxPreviewRecords {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("showing first %d of %d records", MaxPreviewRecords, len(resp.Result.Records)))
		resp.Result.Records = resp.Result.Records[:MaxPreviewRecords]
	}

	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	log.Debug("preview evaluated",
		"mode", cfg.TargetMode,
		"format", cfg.Format,
		"mappings", len(cfg.Mappings),
		"duration_ms", resp.ProcessingTimeMs,
	)
	return resp, nil
}

func (s *Service) previewDocument(ctx context.Context, req PreviewRequest) (any, error) {
	if len(req.Document) > 0 {
		return mapping.Decode(req.Document)
	}
	if req.Source == nil {
		return nil, invalidf("a source or document is required")
	}
	sample, err := s.FetchSample(ctx, *req.Source, !req.Refresh)
	if err != nil {
		return nil, err
	}
	return sample.Document, nil
}

// resultWarnings flags evaluations that produced nothing useful.
func resultWarnings(r *mapping.Result, cfg mapping.Config) []string {
	if r == nil {
		return []string{"document is empty"}
	}

	var warnings []string
	switch r.Mode {
	case mapping.TargetCollection:
		if len(r.Records) == 0 {
			return []string{"no records found in document"}
		}
		unknown := 0
		for _, rec := range r.Records {
			if rec.EntityKey == mapping.UnknownEntityKey {
				unknown++
			}
		}
		if unknown > 0 {
			warnings = append(warnings, fmt.Sprintf("%d of %d records have no entity key", unknown, len(r.Records)))
		}
		if len(cfg.Mappings) > 0 && !anyResolved(r.Records) {
			warnings = append(warnings, "no mapped address resolved in any record")
		}
	default:
		if len(cfg.Mappings) > 0 && !anyPresent(r.Single) {
			warnings = append(warnings, "no mapped address resolved")
		}
	}
	return warnings
}

func anyResolved(records []mapping.ResolvedRecord) bool {
	for _, rec := range records {
		if anyPresent(rec.Fields) {
			return true
		}
	}
	return false
}

func anyPresent(fields map[string]any) bool {
	for _, v := range fields {
		if v != nil {
			return true
		}
	}
	return false
}
