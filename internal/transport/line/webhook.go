// Package line is the LINE Messaging API transport: webhook signature
// verification, event parsing, and the reply client.
package line

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// MessageHandler is the bot-side contract of the webhook. *bot.Bot
// satisfies it.
type MessageHandler interface {
	Greet(ctx context.Context, callerID string) ([]string, error)
	Handle(ctx context.Context, callerID, text string) ([]string, error)
}

// Replier sends reply messages for a webhook event. *Client satisfies it.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []string) error
}

// Handler verifies and dispatches webhook deliveries.
type Handler struct {
	secret  []byte
	bot     MessageHandler
	replier Replier
	log     *slog.Logger
}

// NewHandler creates a webhook Handler.
func NewHandler(channelSecret string, bot MessageHandler, replier Replier, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		secret:  []byte(channelSecret),
		bot:     bot,
		replier: replier,
		log:     log,
	}
}

type event struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookBody struct {
	Events []event `json:"events"`
}

// maxBodyBytes bounds a webhook delivery; LINE batches at most a few
// dozen small events.
const maxBodyBytes = 1 << 20

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	if !ValidateSignature(h.secret, r.Header.Get("X-Line-Signature"), body) {
		h.log.WarnContext(r.Context(), "webhook signature rejected")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	var parsed webhookBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		http.Error(w, "malformed body", http.StatusBadRequest)
		return
	}

	for _, ev := range parsed.Events {
		h.dispatch(r.Context(), ev)
	}
	w.WriteHeader(http.StatusOK)
}

// dispatch handles one event. Failures are logged, never surfaced to
// LINE: a non-200 would make LINE redeliver the whole batch.
func (h *Handler) dispatch(ctx context.Context, ev event) {
	var (
		msgs []string
		err  error
	)

	switch {
	case ev.Type == "follow":
		msgs, err = h.bot.Greet(ctx, ev.Source.UserID)
	case ev.Type == "message" && ev.Message.Type == "text":
		msgs, err = h.bot.Handle(ctx, ev.Source.UserID, ev.Message.Text)
	default:
		return
	}

	if err != nil {
		h.log.ErrorContext(ctx, "event handling failed",
			"type", ev.Type, "caller", ev.Source.UserID, "error", err)
		return
	}
	if len(msgs) == 0 {
		return
	}

	if err := h.replier.Reply(ctx, ev.ReplyToken, msgs); err != nil {
		h.log.ErrorContext(ctx, "reply failed",
			"caller", ev.Source.UserID, "error", err)
	}
}

// NewRouter builds the HTTP mux: a liveness root, a health probe, and
// the webhook callback.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "LINE Bot is Running!")
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"ok"}`)
	}).Methods(http.MethodGet)
	r.Handle("/callback", h).Methods(http.MethodPost)
	return r
}
