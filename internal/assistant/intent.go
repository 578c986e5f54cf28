package assistant

import "strings"

// Intent is the classified purpose of a free-text message.
type Intent string

const (
	IntentBalance      Intent = "balance"
	IntentDepositHelp  Intent = "deposit_help"
	IntentWithdrawHelp Intent = "withdraw_help"
	IntentHelpMenu     Intent = "help_menu"
	IntentGreeting     Intent = "greeting"
	IntentThanks       Intent = "thanks"
	IntentFarewell     Intent = "farewell"
	IntentFallback     Intent = "fallback"
)

type rule struct {
	intent   Intent
	keywords []string
}

// rules is the fixed-priority keyword table. Order matters: the first rule
// whose keyword appears in the normalized input wins, so balance questions
// beat the generic deposit/withdraw keywords they may also contain.
var rules = []rule{
	{IntentBalance, []string{"balance", "check balance", "my money"}},
	{IntentDepositHelp, []string{"deposit", "add money", "credit"}},
	{IntentWithdrawHelp, []string{"withdraw", "take out", "debit"}},
	{IntentHelpMenu, []string{"help", "menu", "options", "what can you do"}},
	{IntentGreeting, []string{"hello", "hi", "hey"}},
	{IntentThanks, []string{"thank"}},
	{IntentFarewell, []string{"bye", "exit", "leave"}},
}

// Classify normalizes the input and walks the rule table in priority order.
func Classify(input string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(normalized, kw) {
				return r.intent
			}
		}
	}
	return IntentFallback
}
