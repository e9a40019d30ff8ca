package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artbot/internal/domain"
	"artbot/internal/infra"
	"artbot/internal/providers/image"
	"artbot/internal/storage"
)

// Sender is the outbound half of the chat platform: plain text with an
// optional reply markup, or a photo. Kept minimal so handlers are testable
// without the Telegram API.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) error
	SendPhoto(ctx context.Context, chatID int64, data []byte) error
}

// Incoming is one user message as the handler sees it.
type Incoming struct {
	ChatID   int64
	Text     string
	LangCode string
}

// Handler routes incoming messages: commands, the style dialogue, and the
// prompt-to-image workflow. Each message is handled independently; failures
// are reported to the chat and never escape.
type Handler struct {
	sender     Sender
	generator  image.Generator
	prefs      storage.PrefsStore
	states     *stateRegistry
	logger     infra.Logger
	waitNotice time.Duration
}

// NewHandler wires the message handler. waitNotice is the cadence of the
// "still working" notices during a generation; zero disables them.
func NewHandler(sender Sender, generator image.Generator, prefs storage.PrefsStore, logger infra.Logger, waitNotice time.Duration) *Handler {
	return &Handler{
		sender:     sender,
		generator:  generator,
		prefs:      prefs,
		states:     newStateRegistry(),
		logger:     logger,
		waitNotice: waitNotice,
	}
}

// HandleMessage processes one update. It blocks for the full duration of a
// generation, so the transport dispatches each message on its own goroutine.
func (h *Handler) HandleMessage(ctx context.Context, msg Incoming) {
	t := TextsFor(msg.LangCode)

	switch msg.Text {
	case "/start":
		h.states.setStep(msg.ChatID, stepIdle)
		h.reply(ctx, msg.ChatID, t.Start, mainKeyboard(t))
		return
	case "/help", t.ButtonHelp:
		h.reply(ctx, msg.ChatID, t.Help, mainKeyboard(t))
		return
	case "/cancel":
		h.states.setStep(msg.ChatID, stepIdle)
		h.reply(ctx, msg.ChatID, t.Stopped, removeKeyboard())
		return
	case "/input", t.ButtonPrompt:
		h.states.setStep(msg.ChatID, stepAwaitPrompt)
		h.reply(ctx, msg.ChatID, t.InputPrompt, removeKeyboard())
		return
	case "/style", t.ButtonStyle:
		h.offerStyles(ctx, msg.ChatID, t)
		return
	}

	switch h.states.getStep(msg.ChatID) {
	case stepAwaitStyle:
		h.applyStyle(ctx, msg, t)
	case stepAwaitPrompt:
		h.runGeneration(ctx, msg, t)
	default:
		h.reply(ctx, msg.ChatID, t.Start, mainKeyboard(t))
	}
}

func (h *Handler) offerStyles(ctx context.Context, chatID int64, t *Texts) {
	styles, err := h.generator.Styles(ctx)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat", chatID).Msg("style catalog unavailable")
		h.reply(ctx, chatID, t.ErrInternal, mainKeyboard(t))
		return
	}
	h.states.setStep(chatID, stepAwaitStyle)
	h.reply(ctx, chatID, t.InputStyle, stylesKeyboard(styles))
}

func (h *Handler) applyStyle(ctx context.Context, msg Incoming, t *Texts) {
	h.states.setStep(msg.ChatID, stepIdle)

	styles, err := h.generator.Styles(ctx)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat", msg.ChatID).Msg("style catalog unavailable")
		h.reply(ctx, msg.ChatID, t.ErrInternal, mainKeyboard(t))
		return
	}
	name := image.StyleByTitle(styles, msg.Text)
	if name == "" {
		h.reply(ctx, msg.ChatID, t.BadStyle, mainKeyboard(t))
		return
	}
	if err := h.prefs.Set(ctx, msg.ChatID, storage.ChatPrefs{StyleTitle: msg.Text, StyleName: name}); err != nil {
		h.logger.Error().Err(err).Int64("chat", msg.ChatID).Msg("failed to store style preference")
		h.reply(ctx, msg.ChatID, t.ErrInternal, mainKeyboard(t))
		return
	}
	h.reply(ctx, msg.ChatID, t.StyleSet, mainKeyboard(t))
}

func (h *Handler) runGeneration(ctx context.Context, msg Incoming, t *Texts) {
	if !h.states.tryBeginJob(msg.ChatID) {
		h.reply(ctx, msg.ChatID, t.Busy, nil)
		return
	}
	defer h.states.endJob(msg.ChatID)
	h.states.setStep(msg.ChatID, stepIdle)

	prefs, found, err := h.prefs.Get(ctx, msg.ChatID)
	if err != nil {
		h.logger.Error().Err(err).Int64("chat", msg.ChatID).Msg("failed to load style preference")
	}
	styleTitle, styleName := "DEFAULT", ""
	if found {
		styleTitle, styleName = prefs.StyleTitle, prefs.StyleName
	}

	params := domain.DefaultParams()
	if styleName != "" {
		params.Style = styleName
	}
	job := domain.GenerationJob{
		RequestID: uuid.NewString(),
		ChatID:    msg.ChatID,
		Prompt:    msg.Text,
		Params:    params,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
	}
	log := h.logger.With().Str("request_id", job.RequestID).Int64("chat", msg.ChatID).Logger()
	log.Info().Str("style", styleTitle).Msg("generation requested")

	h.reply(ctx, msg.ChatID, fmt.Sprintf(t.GeneratingWith, styleTitle), removeKeyboard())
	stop := h.notifyWhileWaiting(ctx, msg.ChatID, t)
	asset, err := h.generator.Generate(ctx, image.Request{
		RequestID: job.RequestID,
		Prompt:    msg.Text,
		Style:     styleName,
	})
	stop()

	if err != nil {
		log.Warn().Err(err).Msg("generation failed")
		h.reply(ctx, msg.ChatID, errorText(t, err), mainKeyboard(t))
		return
	}

	log.Info().Int("bytes", len(asset.Data)).Msg("generation succeeded")
	if err := h.sender.SendPhoto(ctx, msg.ChatID, asset.Data); err != nil {
		log.Error().Err(err).Msg("failed to send photo")
	}
}

// notifyWhileWaiting sends rotating progress notices until the returned stop
// function is called. Disabled when waitNotice is zero.
func (h *Handler) notifyWhileWaiting(ctx context.Context, chatID int64, t *Texts) func() {
	if h.waitNotice <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(h.waitNotice)
		defer ticker.Stop()
		for n := 0; ; n++ {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.reply(ctx, chatID, t.WaitText(n), nil)
			}
		}
	}()
	return func() { close(done) }
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, markup any) {
	if err := h.sender.SendMessage(ctx, chatID, text, markup); err != nil {
		h.logger.Error().Err(err).Int64("chat", chatID).Msg("failed to send message")
	}
}

// errorText maps the generation error taxonomy to a human-readable reply.
func errorText(t *Texts, err error) string {
	switch {
	case errors.Is(err, domain.ErrAuth):
		return t.ErrAuth
	case errors.Is(err, domain.ErrSubmission):
		return t.ErrSubmission
	case errors.Is(err, domain.ErrGeneration):
		return t.ErrGeneration
	case errors.Is(err, domain.ErrTimeout):
		return t.ErrTimeout
	default:
		return t.ErrInternal
	}
}
