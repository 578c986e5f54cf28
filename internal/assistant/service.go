package assistant

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mybank/mybank/internal/completion"
)

// historyWindow caps how many prior chat entries are forwarded to the
// completion service.
const historyWindow = 5

// WelcomeText seeds an empty chat when the dashboard first renders.
const WelcomeText = "Hi! I can help you check your balance, deposit money, and withdraw cash. Type a question to get started."

var amountPrinter = message.NewPrinter(language.English)

// Context carries the live session facts templates substitute into replies.
type Context struct {
	Name    string
	Balance int64
}

// Reply is the assistant's answer to one question.
type Reply struct {
	Intent Intent
	Text   string
}

// Service answers account questions from the fixed rule table, optionally
// deferring to a completion service. A nil completer keeps the assistant
// fully deterministic.
type Service struct {
	completer      completion.Completer
	alwaysComplete bool
}

// NewService builds an assistant. When alwaysComplete is set every question
// goes to the completer; otherwise it is only consulted for inputs no rule
// matches.
func NewService(completer completion.Completer, alwaysComplete bool) *Service {
	return &Service{completer: completer, alwaysComplete: alwaysComplete}
}

// Respond classifies the question, renders the reply, and appends the user
// and assistant entries to the history in that order. Completer failures are
// rendered as a reply rather than returned; the assistant never breaks the
// session.
func (s *Service) Respond(ctx context.Context, input string, sc Context, history *History) Reply {
	intent := Classify(input)

	var reply Reply
	if s.completer != nil && (s.alwaysComplete || intent == IntentFallback) {
		reply = s.complete(ctx, input, sc, history)
	} else {
		reply = Reply{Intent: intent, Text: render(intent, sc)}
	}

	history.Append(RoleUser, input)
	history.Append(RoleAssistant, reply.Text)
	return reply
}

func (s *Service) complete(ctx context.Context, input string, sc Context, history *History) Reply {
	system := fmt.Sprintf(
		"You are the MyBank account assistant. The customer is %s and their current balance is %s. Answer briefly and only about their account.",
		displayName(sc.Name), amountPrinter.Sprintf("₹%d", sc.Balance),
	)

	turns := make([]completion.Turn, 0, historyWindow)
	for _, msg := range history.Last(historyWindow) {
		turns = append(turns, completion.Turn{Role: msg.Role, Text: msg.Text})
	}

	text, err := s.completer.Complete(ctx, system, turns, input)
	if err != nil {
		return Reply{
			Intent: IntentFallback,
			Text:   "Sorry, I could not reach the assistant service. Please try again in a moment.",
		}
	}
	return Reply{Intent: IntentFallback, Text: text}
}

func render(intent Intent, sc Context) string {
	switch intent {
	case IntentBalance:
		return amountPrinter.Sprintf("Your current balance is ₹%d. You can always see it at the top of your dashboard.", sc.Balance)
	case IntentDepositHelp:
		return "To deposit money: open the Deposit section, enter the amount you want to add, and press Deposit. The balance updates instantly."
	case IntentWithdrawHelp:
		return "To withdraw money: open the Withdraw section, enter the amount, and press Withdraw. Make sure you have enough balance to avoid errors."
	case IntentHelpMenu:
		return "I can help you check your balance, deposit money, and withdraw cash. Try asking 'What is my balance?' or 'How do I deposit?'"
	case IntentGreeting:
		return fmt.Sprintf("Hello %s! I'm your MyBank assistant. Ask me about your balance, deposits, or withdrawals.", displayName(sc.Name))
	case IntentThanks:
		return "You're very welcome! Feel free to ask anything else."
	case IntentFarewell:
		return "Goodbye! Come back anytime for help with your banking."
	default:
		return "I didn't quite get that. Try asking about your balance, deposits, or withdrawals. For example: 'How to deposit?'"
	}
}

func displayName(name string) string {
	if name == "" {
		return "User"
	}
	return name
}
