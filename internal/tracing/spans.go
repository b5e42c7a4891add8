package tracing

// Span names.
const (
	SpanDispatch = "dispatch.call"
)

// Span attribute keys.
const (
	AttrGroup      = "dispatch.group"
	AttrPositional = "dispatch.args.positional"
	AttrKeywords   = "dispatch.args.keywords"
	AttrOutcome    = "dispatch.outcome"
	AttrResultType = "dispatch.result.type"
)
