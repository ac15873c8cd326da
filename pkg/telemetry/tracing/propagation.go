package tracing

import (
	"net/http"
	"strings"
)

// Propagation headers.
//
// A trace crosses a process boundary as a small fixed header set plus
// one baggage-<key> header per baggage entry. A downstream service can
// continue the trace only when both HeaderTraceID and HeaderSpanID are
// present; absence of either starts a fresh trace instead.
const (
	HeaderTraceID       = "x-trace-id"
	HeaderSpanID        = "x-span-id"
	HeaderParentSpanID  = "x-parent-span-id"
	HeaderServiceName   = "x-service-name"
	HeaderOperationName = "x-operation-name"

	// BaggagePrefix prefixes one header per baggage entry.
	BaggagePrefix = "baggage-"
)

// InjectIntoHeaders writes the span's propagation context into headers,
// one baggage-<key> header per baggage entry. Injecting a no-op span
// writes nothing, so the downstream side starts a fresh trace.
func InjectIntoHeaders(s *Span, headers http.Header) {
	if s == nil || !s.Sampled() {
		return
	}

	headers.Set(HeaderTraceID, s.TraceID())
	headers.Set(HeaderSpanID, s.SpanID())
	if s.ParentSpanID() != "" {
		headers.Set(HeaderParentSpanID, s.ParentSpanID())
	}
	headers.Set(HeaderServiceName, s.ServiceName())
	headers.Set(HeaderOperationName, s.OperationName())

	for k, v := range s.Baggage() {
		headers.Set(BaggagePrefix+k, v)
	}
}

// ExtractFromHeaders reads a propagation context from headers. The
// second return value is false when the headers do not carry a
// continuable context (both trace and span ID are required).
func ExtractFromHeaders(headers http.Header) (SpanContext, bool) {
	ctx := SpanContext{
		TraceID:       headers.Get(HeaderTraceID),
		SpanID:        headers.Get(HeaderSpanID),
		ServiceName:   headers.Get(HeaderServiceName),
		OperationName: headers.Get(HeaderOperationName),
	}

	if !ctx.Continuable() {
		return SpanContext{}, false
	}

	for key, values := range headers {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, BaggagePrefix) || len(values) == 0 {
			continue
		}
		name := lower[len(BaggagePrefix):]
		if name == "" {
			continue
		}
		if ctx.Baggage == nil {
			ctx.Baggage = make(map[string]string)
		}
		ctx.Baggage[name] = values[0]
	}

	return ctx, true
}
