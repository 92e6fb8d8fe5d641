package crypto

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// answerSeparator joins the normalized answers into a single KDF
// secret. The ASCII unit separator cannot appear in natural text, so
// answer boundaries stay unambiguous.
const answerSeparator = "\x1f"

// NormalizeAnswer canonicalizes one free-text security answer:
// NFKC unicode normalization, lowercase, trimmed, with internal
// whitespace runs collapsed to a single space. Trivial formatting
// differences must not create an unrecoverable vault; the answer's
// entropy remains the actual secret.
func NormalizeAnswer(answer string) string {
	s := norm.NFKC.String(answer)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeAnswers canonicalizes an ordered set of answers into the
// stable secret fed to the KDF for the security unlock path. Order
// matters: answers must match the order recorded in the vault's
// security question list.
func (p *CryptoProvider) NormalizeAnswers(answers []string) string {
	parts := make([]string, len(answers))
	for i, a := range answers {
		parts[i] = NormalizeAnswer(a)
	}
	return strings.Join(parts, answerSeparator)
}
