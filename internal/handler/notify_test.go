package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PartyStarter240/donutmacro-discord-bot/internal/discord"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/model"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/registry"

	"github.com/gofiber/fiber/v2"
)

type sentUpdate struct {
	uuid    string
	message string
}

type fakeSender struct {
	ready bool
	res   *discord.UpdateResult
	err   error
	calls []sentUpdate
}

func (f *fakeSender) SendUpdate(uuid, message string) (*discord.UpdateResult, error) {
	f.calls = append(f.calls, sentUpdate{uuid, message})
	if f.err != nil {
		return nil, f.err
	}
	return f.res, nil
}

func (f *fakeSender) Ready() bool { return f.ready }

func newTestApp(sender *fakeSender) (*fiber.App, *registry.CodeStore, *registry.LinkRegistry) {
	codes := registry.NewCodeStore(5 * time.Minute)
	links := registry.NewLinkRegistry()
	h := NewNotifyHandler(sender, codes, links)
	healthH := NewHealthHandler(sender)

	app := fiber.New()
	app.Get("/", healthH.Status)
	app.Post("/send-update", h.SendUpdate)
	app.Post("/generate-code", h.GenerateCode)
	return app, codes, links
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("decode body %q: %v", data, err)
		}
	}
	return resp, decoded
}

func TestSendUpdateSuccess(t *testing.T) {
	sender := &fakeSender{
		ready: true,
		res:   &discord.UpdateResult{ChannelID: "chan-1", ChannelName: "player-abc-123-"},
	}
	app, _, _ := newTestApp(sender)

	resp, body := postJSON(t, app, "/send-update", model.SendUpdateRequest{
		UUID:    "abc-123",
		Message: "Quest done",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != true || body["channelId"] != "chan-1" || body["channelName"] != "player-abc-123-" {
		t.Fatalf("unexpected body %v", body)
	}
	if len(sender.calls) != 1 || sender.calls[0].uuid != "abc-123" || sender.calls[0].message != "Quest done" {
		t.Fatalf("unexpected sender calls %v", sender.calls)
	}
}

func TestSendUpdateMissingFields(t *testing.T) {
	sender := &fakeSender{ready: true}
	app, _, _ := newTestApp(sender)

	for _, req := range []model.SendUpdateRequest{
		{UUID: "", Message: "hi"},
		{UUID: "abc-123", Message: ""},
		{},
	} {
		resp, _ := postJSON(t, app, "/send-update", req)
		if resp.StatusCode != 400 {
			t.Fatalf("expected 400 for %+v, got %d", req, resp.StatusCode)
		}
	}
	if len(sender.calls) != 0 {
		t.Fatalf("validation failures must not reach the notifier, got %d calls", len(sender.calls))
	}
}

func TestSendUpdateNotReady(t *testing.T) {
	sender := &fakeSender{err: discord.ErrNotReady}
	app, _, _ := newTestApp(sender)

	resp, _ := postJSON(t, app, "/send-update", model.SendUpdateRequest{UUID: "abc-123", Message: "hi"})
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestSendUpdatePlatformFailure(t *testing.T) {
	sender := &fakeSender{ready: true, err: errors.New("channel create failed")}
	app, _, _ := newTestApp(sender)

	resp, _ := postJSON(t, app, "/send-update", model.SendUpdateRequest{UUID: "abc-123", Message: "hi"})
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestGenerateCodeSuccess(t *testing.T) {
	app, codes, _ := newTestApp(&fakeSender{ready: true})

	resp, body := postJSON(t, app, "/generate-code", model.GenerateCodeRequest{UUID: "abc-123"})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	code, _ := body["code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected 6-char code, got %q", code)
	}
	if body["expiresIn"] != float64(300) {
		t.Fatalf("expected expiresIn 300, got %v", body["expiresIn"])
	}

	// The issued code actually redeems to the player
	if uuid, ok := codes.Redeem(code); !ok || uuid != "abc-123" {
		t.Fatalf("issued code should redeem to abc-123, got %q (ok=%v)", uuid, ok)
	}
}

func TestGenerateCodeAlreadyLinked(t *testing.T) {
	app, _, links := newTestApp(&fakeSender{ready: true})
	links.Link("abc-123", "discord-user-1")

	resp, body := postJSON(t, app, "/generate-code", model.GenerateCodeRequest{UUID: "abc-123"})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != false || body["alreadyLinked"] != true {
		t.Fatalf("expected alreadyLinked, got %v", body)
	}
	if _, hasCode := body["code"]; hasCode {
		t.Fatalf("no code should be issued for a linked player, got %v", body)
	}
}

func TestGenerateCodeMissingUUID(t *testing.T) {
	app, _, _ := newTestApp(&fakeSender{ready: true})

	resp, _ := postJSON(t, app, "/generate-code", model.GenerateCodeRequest{})
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestStatusReportsDiscordState(t *testing.T) {
	for _, tc := range []struct {
		ready bool
		want  string
	}{
		{true, "connected"},
		{false, "disconnected"},
	} {
		app, _, _ := newTestApp(&fakeSender{ready: tc.ready})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		var body map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["discord"] != tc.want {
			t.Fatalf("expected discord=%s, got %v", tc.want, body["discord"])
		}
		if _, ok := body["uptime"].(string); !ok {
			t.Fatalf("expected uptime string, got %v", body["uptime"])
		}
	}
}
