// Trailmark - Web Analytics Aggregation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trailmark

package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/trailmark/internal/logging"
	"github.com/tomtom215/trailmark/internal/metrics"
	"github.com/tomtom215/trailmark/internal/models"
	"github.com/tomtom215/trailmark/internal/validation"
)

// maxLineSize bounds a single NDJSON line.
const maxLineSize = 1 << 20

// ctxCheckEvery is how many records are decoded between context checks.
const ctxCheckEvery = 1024

var errUnknownKind = errors.New("unknown record kind")

type envelope struct {
	Kind Kind `json:"kind"`
}

// ReadFile reads the input file at path. See Read.
func ReadFile(ctx context.Context, path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("path", path).Msg("Error closing input file")
		}
	}()

	return Read(ctx, f)
}

// Read decodes page views and interactions from r.
//
// The input is either NDJSON (one envelope per line, blank lines ignored) or a
// single JSON array of envelopes; the first non-space byte decides. Each
// envelope carries a "kind" field next to the record fields. Records that fail
// to decode or validate are skipped and recorded in Batch.Stats.Rejected; only
// I/O errors, a malformed top-level array and context cancellation fail the read.
func Read(ctx context.Context, r io.Reader) (*Batch, error) {
	batch := &Batch{Stats: Stats{StartTime: time.Now()}}
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		batch.Stats.EndTime = time.Now()
		return batch, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if first == '[' {
		err = readArray(ctx, br, batch)
	} else {
		err = readLines(ctx, br, batch)
	}
	batch.Stats.EndTime = time.Now()
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int("records", batch.Stats.Records).
		Int("page_views", batch.Stats.PageViews).
		Int("interactions", batch.Stats.Interactions).
		Int("rejected", len(batch.Stats.Rejected)).
		Dur("duration", batch.Stats.Duration()).
		Msg("Input read")

	return batch, nil
}

// peekNonSpace discards leading whitespace and returns the next byte unread.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func readLines(ctx context.Context, br *bufio.Reader, batch *Batch) error {
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		batch.add(ctx, line, raw)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input line %d: %w", line+1, err)
	}
	return nil
}

func readArray(ctx context.Context, br *bufio.Reader, batch *Batch) error {
	var items []json.RawMessage
	if err := json.NewDecoder(br).Decode(&items); err != nil {
		return fmt.Errorf("decode input array: %w", err)
	}

	for i, raw := range items {
		if (i+1)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		batch.add(ctx, i+1, raw)
	}
	return nil
}

// add decodes one envelope and appends the record or a rejection.
func (b *Batch) add(ctx context.Context, pos int, raw []byte) {
	b.Stats.Records++

	kind, err := b.decode(raw)
	if err != nil {
		reason := ReasonMalformed
		var verr *validation.StructValidationError
		switch {
		case errors.As(err, &verr):
			reason = ReasonValidation
		case errors.Is(err, errUnknownKind):
			reason = ReasonUnknownKind
		}

		b.Stats.Rejected = append(b.Stats.Rejected, Rejection{Record: pos, Reason: reason, Err: err})
		metrics.RecordIngestRejected(reason)
		logging.Ctx(ctx).Warn().
			Int("record", pos).
			Str("reason", reason).
			Err(err).
			Msg("Input record rejected")
		return
	}

	metrics.RecordIngestAccepted(string(kind))
}

func (b *Batch) decode(raw []byte) (Kind, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Kind {
	case KindPageView:
		var pv models.PageView
		if err := json.Unmarshal(raw, &pv); err != nil {
			return "", fmt.Errorf("decode page view: %w", err)
		}
		if verr := validation.ValidateStruct(&pv); verr != nil {
			return "", verr
		}
		b.PageViews = append(b.PageViews, pv)
		b.Stats.PageViews++

	case KindInteraction:
		var in models.Interaction
		if err := json.Unmarshal(raw, &in); err != nil {
			return "", fmt.Errorf("decode interaction: %w", err)
		}
		if verr := validation.ValidateStruct(&in); verr != nil {
			return "", verr
		}
		b.Interactions = append(b.Interactions, in)
		b.Stats.Interactions++

	default:
		return "", fmt.Errorf("%w: %q", errUnknownKind, env.Kind)
	}

	return env.Kind, nil
}
