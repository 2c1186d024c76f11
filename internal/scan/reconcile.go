package scan

import "fmt"

// MissingImportMessage is the human-readable text for an unbound model.
func MissingImportMessage(identifier string) string {
	return fmt.Sprintf("Model '%s' is not imported. Please import the model before using it.", identifier)
}

// Reconcile emits one Finding per usage whose identifier is absent from bound.
// Repeated usages of the same unbound name each get their own Finding.
func Reconcile(usages []UsageSite, bound BindingSet) []Finding {
	findings := make([]Finding, 0, len(usages))
	for _, u := range usages {
		if bound.Has(u.Identifier) {
			continue
		}
		findings = append(findings, Finding{
			UsageSite: u,
			Code:      DiagnosticCode,
			Message:   MissingImportMessage(u.Identifier),
			Severity:  SeverityWarning,
		})
	}
	return findings
}
