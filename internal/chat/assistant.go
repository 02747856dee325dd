package chat

import (
	"fmt"
	"strings"
)

// Greeting is the first assistant message in an empty conversation.
const Greeting = "Hello, I'm here to help you with questions about separation and your parenting arrangements. What can I help you with today?"

// blockedWords cause a message to be rejected before it is stored. Matching
// is substring based, so "hurtful" is rejected too; the safety bias is
// toward over-blocking.
var blockedWords = []string{"abuse", "hurt", "attack", "kill"}

// IsBlocked reports whether the message discusses harm and must not be
// stored or answered.
func IsBlocked(message string) bool {
	lower := strings.ToLower(message)
	for _, word := range blockedWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// FamilyStats carries the counts the assistant weaves into its replies.
type FamilyStats struct {
	UpcomingHolidays   int
	AgreedFinancial    int
	DisagreedFinancial int
}

// Topic names the rule a message matches, for observability.
func Topic(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "holiday") || strings.Contains(lower, "vacation"):
		return "holiday"
	case strings.Contains(lower, "mediation") || strings.Contains(lower, "mediator"):
		return "mediation"
	case strings.Contains(lower, "money") || strings.Contains(lower, "financial") || strings.Contains(lower, "finance"):
		return "financial"
	case strings.Contains(lower, "court") || strings.Contains(lower, "legal"):
		return "legal"
	default:
		return "general"
	}
}

// Reply produces the assistant's answer to a message. Rules are checked in
// order and the first keyword hit wins, so "holiday money" is answered as a
// holiday question.
func Reply(message string, stats FamilyStats) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "holiday") || strings.Contains(lower, "vacation"):
		return fmt.Sprintf("I can see from your parenting plan that you have %d upcoming holiday arrangements. Would you like me to help you with planning another holiday or understanding the current arrangements?", stats.UpcomingHolidays)
	case strings.Contains(lower, "mediation") || strings.Contains(lower, "mediator"):
		return "Mediation can help you and your ex-partner agree on arrangements for your children. A mediator is an independent, trained professional who helps you reach agreements without going to court. You can find local mediators through the Family Mediation Council: https://www.familymediationcouncil.org.uk/"
	case strings.Contains(lower, "money") || strings.Contains(lower, "financial") || strings.Contains(lower, "finance"):
		return fmt.Sprintf("Based on your financial arrangements, you currently have %d agreed items and %d items where you and your ex-partner have different views. Would you like information about child maintenance calculations or help with discussing the disagreed items?", stats.AgreedFinancial, stats.DisagreedFinancial)
	case strings.Contains(lower, "court") || strings.Contains(lower, "legal"):
		return "Going to court should usually be a last resort. Before applying to court, you'll need to attend a Mediation Information and Assessment Meeting (MIAM), unless exemptions apply such as in cases involving domestic abuse. Would you like information about the court process or alternatives to court?"
	default:
		return "Thank you for your question. I can provide information about parenting arrangements, financial matters, and support services. Would you like to know more about any specific area of separation or co-parenting?"
	}
}
