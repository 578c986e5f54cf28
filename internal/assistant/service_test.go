package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mybank/mybank/internal/completion"
)

func TestClassifyPriorityOrder(t *testing.T) {
	cases := []struct {
		input string
		want  Intent
	}{
		{"what is my balance", IntentBalance},
		{"Check Balance please", IntentBalance},
		{"where is my money", IntentBalance},
		// Balance wins over deposit even when both keywords appear.
		{"does a deposit change my balance", IntentBalance},
		{"how do I deposit", IntentDepositHelp},
		{"add money to my account", IntentDepositHelp},
		{"how to withdraw cash", IntentWithdrawHelp},
		{"can I take out 500", IntentWithdrawHelp},
		{"help", IntentHelpMenu},
		{"what can you do", IntentHelpMenu},
		{"hello", IntentGreeting},
		{"thank you so much", IntentThanks},
		{"bye", IntentFarewell},
		{"asdf1234", IntentFallback},
		{"", IntentFallback},
	}

	for _, tc := range cases {
		if got := Classify(tc.input); got != tc.want {
			t.Fatalf("Classify(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := Classify("  What Is My BALANCE?  "); got != IntentBalance {
			t.Fatalf("run %d: got %s", i, got)
		}
	}
}

func TestRespondSubstitutesBalanceAndName(t *testing.T) {
	svc := NewService(nil, false)
	var h History

	reply := svc.Respond(context.Background(), "what is my balance", Context{Name: "Jane Doe", Balance: 500}, &h)
	if reply.Intent != IntentBalance {
		t.Fatalf("expected balance intent, got %s", reply.Intent)
	}
	if !strings.Contains(reply.Text, "500") {
		t.Fatalf("reply should contain the live balance: %q", reply.Text)
	}

	reply = svc.Respond(context.Background(), "hello", Context{Name: "Jane Doe"}, &h)
	if !strings.Contains(reply.Text, "Jane Doe") {
		t.Fatalf("greeting should contain the account name: %q", reply.Text)
	}

	reply = svc.Respond(context.Background(), "hello", Context{}, &h)
	if !strings.Contains(reply.Text, "User") {
		t.Fatalf("greeting should fall back to the placeholder: %q", reply.Text)
	}
}

func TestRespondAppendsHistoryInOrder(t *testing.T) {
	svc := NewService(nil, false)
	var h History

	svc.Respond(context.Background(), "hi", Context{}, &h)

	msgs := h.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Text != "hi" {
		t.Fatalf("first entry should be the user turn: %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant {
		t.Fatalf("second entry should be the assistant turn: %+v", msgs[1])
	}

	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("clear should empty the history")
	}
}

type failingCompleter struct{}

func (failingCompleter) Complete(_ context.Context, _ string, _ []completion.Turn, _ string) (string, error) {
	return "", errors.New("service unavailable")
}

func TestRespondFallsBackToCompleter(t *testing.T) {
	svc := NewService(completion.StaticCompleter{Reply: "external answer"}, false)
	var h History

	// A rule match never reaches the completer.
	reply := svc.Respond(context.Background(), "what is my balance", Context{Balance: 42}, &h)
	if reply.Text == "external answer" {
		t.Fatalf("rule match should not use the completer")
	}

	reply = svc.Respond(context.Background(), "zzzzz", Context{}, &h)
	if reply.Text != "external answer" {
		t.Fatalf("unmatched input should use the completer, got %q", reply.Text)
	}
}

func TestRespondAlwaysCompleteMode(t *testing.T) {
	svc := NewService(completion.StaticCompleter{Reply: "external answer"}, true)
	var h History

	reply := svc.Respond(context.Background(), "what is my balance", Context{Balance: 42}, &h)
	if reply.Text != "external answer" {
		t.Fatalf("always-complete mode should defer every question, got %q", reply.Text)
	}
}

func TestRespondCompleterFailureBecomesReply(t *testing.T) {
	svc := NewService(failingCompleter{}, false)
	var h History

	reply := svc.Respond(context.Background(), "zzzzz", Context{}, &h)
	if !strings.Contains(reply.Text, "could not reach") {
		t.Fatalf("completer failure should surface as a reply, got %q", reply.Text)
	}
	if h.Len() != 2 {
		t.Fatalf("history must still record the exchange, got %d entries", h.Len())
	}
}

func TestHistoryLastWindow(t *testing.T) {
	var h History
	for _, text := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		h.Append(RoleUser, text)
	}

	last := h.Last(5)
	if len(last) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(last))
	}
	if last[0].Text != "c" || last[4].Text != "g" {
		t.Fatalf("unexpected window: %+v", last)
	}
}
