package sender

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/groupmate_bot/internal/service"
	"github.com/Freeeeeet/groupmate_bot/internal/workerpool"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// API вызовы Telegram Bot API, которые нужны боту. *bot.Bot реализует этот интерфейс.
type API interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// Options настройки отправки
type Options struct {
	Workers      int
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration ограничивает время на одну отправку вместе с повторами
	MaxDuration time.Duration
}

// Sender асинхронно выполняет исходящие вызовы Telegram. Вызовы одного чата
// идут по порядку, временные ошибки повторяются, итоговые ошибки логируются.
type Sender struct {
	api    API
	opts   Options
	pool   *workerpool.Pool
	logger *zap.Logger
}

// New запускает отправитель; нулевые настройки заменяются значениями по умолчанию
func New(api API, opts Options, logger *zap.Logger) *Sender {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 30 * time.Second
	}
	return &Sender{
		api:  api,
		opts: opts,
		pool: workerpool.New(workerpool.Options{
			Name:      "sender",
			Workers:   opts.Workers,
			QueueSize: opts.QueueSize,
		}, logger),
		logger: logger,
	}
}

// Close дожидается отправки всего, что уже в очереди
func (s *Sender) Close() {
	s.pool.Close()
}

// SendText отправляет HTML сообщение
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) {
	s.enqueue(ctx, chatID, "sendMessage", func(ctx context.Context) error {
		_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		return err
	})
}

// SendWithKeyboard отправляет сообщение с inline или reply клавиатурой
func (s *Sender) SendWithKeyboard(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	s.enqueue(ctx, chatID, "sendMessage", func(ctx context.Context) error {
		_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})
		return err
	})
}

// EditMessageText заменяет текст и клавиатуру сообщения
func (s *Sender) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) {
	s.enqueue(ctx, chatID, "editMessageText", func(ctx context.Context) error {
		params := &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		}
		if markup != nil {
			params.ReplyMarkup = markup
		}
		_, err := s.api.EditMessageText(ctx, params)
		if isNotModified(err) {
			return nil
		}
		return err
	})
}

// AnswerCallback снимает "часики" с кнопки; ответ идёт в очередь чата, где нажата кнопка
func (s *Sender) AnswerCallback(ctx context.Context, chatID int64, callbackID, text string) {
	s.enqueue(ctx, chatID, "answerCallbackQuery", func(ctx context.Context) error {
		_, err := s.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		})
		return err
	})
}

// SendDocument отправляет файл
func (s *Sender) SendDocument(ctx context.Context, chatID int64, doc service.Attachment) {
	s.enqueue(ctx, chatID, "sendDocument", func(ctx context.Context) error {
		_, err := s.api.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID: chatID,
			Document: &models.InputFileUpload{
				Filename: doc.Filename,
				Data:     bytes.NewReader(doc.Data),
			},
			Caption:   doc.Caption,
			ParseMode: models.ParseModeHTML,
		})
		return err
	})
}

// SendPhoto отправляет картинку с подписью
func (s *Sender) SendPhoto(ctx context.Context, chatID int64, photo service.Attachment) {
	s.enqueue(ctx, chatID, "sendPhoto", func(ctx context.Context) error {
		_, err := s.api.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID,
			Photo: &models.InputFileUpload{
				Filename: photo.Filename,
				Data:     bytes.NewReader(photo.Data),
			},
			Caption:   photo.Caption,
			ParseMode: models.ParseModeHTML,
		})
		return err
	})
}

func (s *Sender) enqueue(ctx context.Context, chatID int64, action string, run func(ctx context.Context) error) {
	// отправка переживает обработчик события, но сохраняет значения контекста
	ctx = context.WithoutCancel(ctx)
	err := s.pool.Submit(ctx, chatID, func(ctx context.Context) {
		s.runWithRetry(ctx, chatID, action, run)
	})
	if err != nil {
		s.logger.Error("Failed to enqueue telegram call",
			zap.String("action", action),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

func (s *Sender) runWithRetry(ctx context.Context, chatID int64, action string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := s.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = run(ctx)
		if lastErr == nil {
			if attempt > 1 {
				s.logger.Info("Telegram call succeeded after retry",
					zap.String("action", action),
					zap.Int64("chat_id", chatID),
					zap.Int("attempt", attempt),
				)
			}
			return
		}
		if !shouldRetry(lastErr) || attempt == attempts {
			break
		}

		delay := retryDelay(lastErr, s.opts.RetryBackoff, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = errors.Join(lastErr, ctx.Err())
			attempt = attempts
		case <-timer.C:
			s.logger.Debug("Retrying telegram call",
				zap.String("action", action),
				zap.Int64("chat_id", chatID),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
		}
	}

	s.logger.Error("Telegram call failed",
		zap.String("action", action),
		zap.Int64("chat_id", chatID),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("error", sanitize(lastErr)),
	)
}
