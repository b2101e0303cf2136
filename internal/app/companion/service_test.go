package companion_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/PabloGalante/mindweave/internal/adapters/llm"
	"github.com/PabloGalante/mindweave/internal/adapters/storage/memory"
	"github.com/PabloGalante/mindweave/internal/app/companion"
	"github.com/PabloGalante/mindweave/internal/domain"
)

// scriptedModel yields fragments and then err, if set.
type scriptedModel struct {
	fragments []string
	err       error
	history   []*domain.Message
}

func (m *scriptedModel) StreamReply(_ context.Context, history []*domain.Message, _ string) iter.Seq2[string, error] {
	m.history = history
	return func(yield func(string, error) bool) {
		for _, f := range m.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if m.err != nil {
			yield("", m.err)
		}
	}
}

func newService(model domain.ChatModel) (*companion.Service, *memory.MessageStore) {
	messages := memory.NewMessageStore()
	return companion.NewService(model, memory.NewChatStore(), messages), messages
}

func TestStartChatAndSend(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(llm.NewMockLLM())

	chat, greeting, err := svc.StartChat(ctx)
	if err != nil {
		t.Fatalf("StartChat failed: %v", err)
	}
	if chat.ID == "" {
		t.Fatalf("expected chat id, got empty")
	}
	if greeting.Text != companion.Greeting || greeting.Author != domain.RoleAI {
		t.Fatalf("unexpected greeting: %+v", greeting)
	}

	reply, err := svc.Send(ctx, chat.ID, "I had a long day", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply.Text == "" {
		t.Fatalf("expected non-empty reply")
	}
	if reply.Feedback != domain.MessageFeedbackPending {
		t.Fatalf("expected pending feedback, got %q", reply.Feedback)
	}

	_, msgs, err := svc.Timeline(ctx, chat.ID, 0)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected greeting, user and reply, got %d messages", len(msgs))
	}
	if msgs[1].Author != domain.RoleUser || msgs[1].Text != "I had a long day" {
		t.Fatalf("unexpected user message: %+v", msgs[1])
	}
	if msgs[2].Text != reply.Text {
		t.Fatalf("stored reply %q differs from returned %q", msgs[2].Text, reply.Text)
	}
}

func TestSendFoldsFragmentsInOrder(t *testing.T) {
	ctx := context.Background()
	model := &scriptedModel{fragments: []string{"How ", "does ", "that ", "feel?"}}
	svc, _ := newService(model)

	chat, _, err := svc.StartChat(ctx)
	if err != nil {
		t.Fatalf("StartChat failed: %v", err)
	}

	var seen []string
	reply, err := svc.Send(ctx, chat.ID, "work is hard", func(m domain.Message) {
		seen = append(seen, m.Text)
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	want := []string{"How ", "How does ", "How does that ", "How does that feel?", "How does that feel?"}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Fatalf("updates = %q, want %q", seen, want)
	}
	if reply.Text != "How does that feel?" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if len(model.history) != 1 || model.history[0].Text != companion.Greeting {
		t.Fatalf("model should see prior history only, got %d messages", len(model.history))
	}
}

func TestSendStreamFailureUsesFallback(t *testing.T) {
	ctx := context.Background()
	model := &scriptedModel{fragments: []string{"partial "}, err: errors.New("connection reset")}
	svc, messages := newService(model)

	chat, _, _ := svc.StartChat(ctx)

	reply, err := svc.Send(ctx, chat.ID, "hello", nil)
	if !errors.Is(err, domain.ErrChat) {
		t.Fatalf("expected ErrChat, got %v", err)
	}
	if reply == nil || reply.Text != domain.ChatFallbackText {
		t.Fatalf("expected fallback reply, got %+v", reply)
	}

	stored, err := messages.GetMessage(chat.ID, reply.ID)
	if err != nil {
		t.Fatalf("GetMessage failed: %v", err)
	}
	if stored.Text != domain.ChatFallbackText {
		t.Fatalf("stored reply = %q", stored.Text)
	}
	if svc.RateMessage(chat.ID, reply.ID, domain.RatingGood) {
		t.Fatalf("fallback reply should not be rateable")
	}

	// The chat is still usable.
	model.err = nil
	model.fragments = []string{"I'm here."}
	if _, err := svc.Send(ctx, chat.ID, "again", nil); err != nil {
		t.Fatalf("Send after failure: %v", err)
	}
}

func TestSendRejectsEmptyTextAndUnknownChat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(llm.NewMockLLM())
	chat, _, _ := svc.StartChat(ctx)

	if _, err := svc.Send(ctx, chat.ID, "   ", nil); !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.Send(ctx, "nope", "hi", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRateMessageIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	svc, messages := newService(llm.NewMockLLM())
	chat, greeting, _ := svc.StartChat(ctx)

	reply, err := svc.Send(ctx, chat.ID, "hi", nil)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if svc.RateMessage(chat.ID, greeting.ID, domain.RatingGood) {
		t.Fatalf("greeting has no pending feedback and should not be rateable")
	}
	if svc.RateMessage(chat.ID, reply.ID, domain.Rating("meh")) {
		t.Fatalf("invalid rating accepted")
	}
	if !svc.RateMessage(chat.ID, reply.ID, domain.RatingBad) {
		t.Fatalf("first rating rejected")
	}
	if svc.RateMessage(chat.ID, reply.ID, domain.RatingGood) {
		t.Fatalf("second rating accepted")
	}

	stored, _ := messages.GetMessage(chat.ID, reply.ID)
	if stored.Feedback != domain.MessageFeedbackBad {
		t.Fatalf("feedback = %q, want bad", stored.Feedback)
	}
}
