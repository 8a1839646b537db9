package presentation

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/maestro-bot/maestro/internal/bot"
	"github.com/maestro-bot/maestro/internal/modules/status/application"
)

func TestHandler_RespondsWithReport(t *testing.T) {
	handler := NewHandler(application.NewReporter("1.2.3", time.Now().Add(-time.Minute)))
	responder := &bot.MockResponder{}

	if err := handler.Handle(nil, nil, responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if responder.LastResponse == nil {
		t.Fatal("expected response, got nil")
	}
	if responder.LastResponse.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("unexpected response type %d", responder.LastResponse.Type)
	}

	embeds := responder.LastResponse.Data.Embeds
	if len(embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(embeds))
	}
	if embeds[0].Fields[0].Value != "1.2.3" {
		t.Errorf("version field = %q, want 1.2.3", embeds[0].Fields[0].Value)
	}
}

func TestHandler_ResponderError(t *testing.T) {
	handler := NewHandler(application.NewReporter("dev", time.Now()))
	expectedErr := errors.New("responder failed")
	responder := &bot.MockResponder{Err: expectedErr}

	if err := handler.Handle(nil, nil, responder); !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}
