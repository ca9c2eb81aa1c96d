package core

import (
	"fmt"

	"nidaan-triage/pkg"
)

const reportDivider = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatReport renders the human-readable triage report returned in the
// doctor_summary field of a successful analysis.
func FormatReport(summary string, risk pkg.RiskLevel, advice string, retentionDays int) string {
	return fmt.Sprintf(`AI TRIAGE SUMMARY
%s
%s

Risk Level: %s

Recommended Action:
%s

%s
⚕️ Medical Disclaimer: This is AI-assisted triage, NOT a medical diagnosis.
Always consult a qualified healthcare provider for proper evaluation.

📋 Data Privacy: Your data is processed securely and will be auto-deleted after %d days.`,
		reportDivider, summary, risk, advice, reportDivider, retentionDays)
}
