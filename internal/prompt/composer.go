// Package prompt assembles retrieved context and a question into the
// instruction prompt sent to the completion provider. Compose is a pure
// string-assembly function; the fallback and referral behaviors it describes
// are carried out by the model, not by pipeline code.
package prompt

import (
	"strings"

	"policyrag/internal/domain"
)

const (
	// FormulaTemplate is the mandatory answer format for refund questions.
	FormulaTemplate = "Refund = [Ticket Price] - [Cancellation Charges] = [Refund Amount]"

	// ReferralMessage is returned verbatim by the model when it cannot
	// produce any reasonable answer.
	ReferralMessage = `"Sorry, visit https://www.irctc.co.in/ or raise a query at https://equery.irctc.co.in/."`
)

const instructions = `You are an expert IRCTC assistant.

For refund or cancellation related queries use the rules below, analyze the timing and class of ticket and clearly calculate the refund.
If percentage and flat fee are both mentioned, choose the greater as per IRCTC policy.

Format your answer as:
` + FormulaTemplate + `

If the query is not available in context, answer the question using your best understanding using external knowledge base. If unsure, mention that user should verify on [IRCTC](https://www.irctc.co.in/).

If you are totally unable to provide answer say:
` + ReferralMessage

// Compose builds the full prompt: instruction text, the retrieved chunks in
// retrieval order separated by blank lines, and the question.
func Compose(query string, results []domain.QueryResult) string {
	contexts := make([]string, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, r.Chunk.Text)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(strings.Join(contexts, "\n\n"))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\nAnswer:\n")
	return sb.String()
}
