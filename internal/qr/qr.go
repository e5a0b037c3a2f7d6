// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package qr renders QR codes as standalone SVG markup.
package qr

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultDark   = "#721F14"
	DefaultLight  = "#E9DDCD"
	DefaultMargin = 2
	DefaultWidth  = 256
)

var ErrEmptyContent = errors.New("qr content must not be empty")

type Options struct {
	Dark    string
	Light   string
	Margin  int
	Width   int
	Level   qrcode.RecoveryLevel
	Timeout time.Duration
}

// DefaultOptions is the invite palette and size.
func DefaultOptions() Options {
	return Options{
		Dark:   DefaultDark,
		Light:  DefaultLight,
		Margin: DefaultMargin,
		Width:  DefaultWidth,
		Level:  qrcode.Medium,
	}
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		return nil, fmt.Errorf("qr width must be positive, got %d", opts.Width)
	}
	if opts.Margin < 0 {
		return nil, fmt.Errorf("qr margin must not be negative, got %d", opts.Margin)
	}
	if opts.Dark == "" || opts.Light == "" {
		return nil, errors.New("qr colors must be set")
	}
	return &Renderer{opts: opts}, nil
}

// Render encodes content and returns the SVG markup. The encoding runs on
// its own goroutine so a deadline on ctx or the configured timeout is
// honoured.
func (r *Renderer) Render(ctx context.Context, content string) (string, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Render")
	defer span.End()

	if content == "" {
		span.RecordError(ErrEmptyContent)
		return "", ErrEmptyContent
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	type result struct {
		svg string
		err error
	}
	done := make(chan result, 1)
	go func() {
		svg, err := r.svg(content)
		done <- result{svg: svg, err: err}
	}()

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			span.RecordError(res.err)
		}
		return res.svg, res.err
	}
}

func (r *Renderer) svg(content string) (string, error) {
	modules, err := matrix(content, r.opts.Level)
	if err != nil {
		return "", err
	}
	size := len(modules) + 2*r.opts.Margin
	w := strconv.Itoa(r.opts.Width)
	s := strconv.Itoa(size)

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + w + `" height="` + w +
		`" viewBox="0 0 ` + s + ` ` + s + `" shape-rendering="crispEdges">`)
	b.WriteString(`<path fill="` + r.opts.Light + `" d="M0 0h` + s + `v` + s + `H0z"/>`)
	b.WriteString(`<path fill="` + r.opts.Dark + `" d="`)
	for y, row := range modules {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			n := strconv.Itoa(x - start)
			fmt.Fprintf(&b, "M%d %dh%sv1h-%sz", start+r.opts.Margin, y+r.opts.Margin, n, n)
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String(), nil
}

// matrix returns the module grid without quiet zone, true meaning dark.
func matrix(content string, level qrcode.RecoveryLevel) ([][]bool, error) {
	q, err := qrcode.New(content, level)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}
