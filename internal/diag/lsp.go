package diag

import (
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

const lspSource = "protopool"

// ToProtocol converts the list into editor diagnostics keyed by document URI.
// root is joined with relative descriptor file names to build file URIs.
// Diagnostics without a file are dropped.
func (l List) ToProtocol(root string) map[protocol.DocumentURI][]protocol.Diagnostic {
	out := make(map[protocol.DocumentURI][]protocol.Diagnostic)
	for _, d := range l {
		loc := d.primary()
		if loc == nil || loc.File == "" {
			continue
		}
		docURI := documentURI(root, loc.File)

		pd := protocol.Diagnostic{
			Range:    toRange(loc.Span),
			Severity: convertSeverity(d.Severity),
			Code:     string(d.Code),
			Source:   lspSource,
			Message:  d.Message,
		}
		if d.Help != "" {
			pd.Message += "\nhelp: " + d.Help
		}
		if d.Second != nil && d.First != nil && d.First.File != "" {
			pd.RelatedInformation = []protocol.DiagnosticRelatedInformation{{
				Location: protocol.Location{
					URI:   documentURI(root, d.First.File),
					Range: toRange(d.First.Span),
				},
				Message: "first defined here",
			}}
		}
		out[docURI] = append(out[docURI], pd)
	}
	return out
}

func documentURI(root, file string) protocol.DocumentURI {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, file)
	}
	return protocol.DocumentURI(uri.File(path))
}

// toRange converts a 1-based span into a 0-based protocol range
func toRange(span *Span) protocol.Range {
	if span == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(span.StartLine - 1),
			Character: uint32(span.StartColumn - 1),
		},
		End: protocol.Position{
			Line:      uint32(span.EndLine - 1),
			Character: uint32(span.EndColumn - 1),
		},
	}
}

func convertSeverity(severity Severity) protocol.DiagnosticSeverity {
	switch severity {
	case SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityError
	}
}
