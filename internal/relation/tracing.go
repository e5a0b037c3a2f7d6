// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package relation

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/thomascanham/wedding/internal/relation")
