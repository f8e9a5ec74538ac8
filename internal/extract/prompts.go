package extract

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/policy.txt
	promptPolicy string
	//go:embed prompts/bills.txt
	promptBills string
	//go:embed prompts/discharge.txt
	promptDischarge string
	//go:embed prompts/reports.txt
	promptReports string
	//go:embed prompts/claim.txt
	promptClaim string
	//go:embed prompts/prescriptions.txt
	promptPrescriptions string
)

// BuildPolicyPrompt composes the policy assessment prompt from the policy
// document text and the user's contextual answers.
func BuildPolicyPrompt(documentText string, contextBlock string) string {
	return strings.NewReplacer(
		"{{CONTEXT}}", contextBlock,
		"{{DOCUMENT}}", documentText,
	).Replace(promptPolicy)
}

// BuildBillPrompt composes the bill reimbursement prompt; the policy text is
// attached so the model can cross-check the maximum reimbursible amount.
func BuildBillPrompt(billText string, policyText string) string {
	return strings.NewReplacer(
		"{{DOCUMENT}}", billText,
		"{{POLICY}}", policyText,
	).Replace(promptBills)
}

// BuildDischargePrompt composes the discharge summary prompt.
func BuildDischargePrompt(documentText string) string {
	return strings.ReplaceAll(promptDischarge, "{{DOCUMENT}}", documentText)
}

// BuildReportPrompt composes the medical report summary prompt.
func BuildReportPrompt(documentText string) string {
	return strings.ReplaceAll(promptReports, "{{DOCUMENT}}", documentText)
}

// BuildClaimPrompt composes the claim form prompt.
func BuildClaimPrompt(documentText string) string {
	return strings.ReplaceAll(promptClaim, "{{DOCUMENT}}", documentText)
}

// BuildPrescriptionPrompt composes the prescription prompt.
func BuildPrescriptionPrompt(documentText string) string {
	return strings.ReplaceAll(promptPrescriptions, "{{DOCUMENT}}", documentText)
}
