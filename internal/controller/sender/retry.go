package sender

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// shouldRetry стоит ли повторять вызов: сетевые таймауты, обрыв соединения и 429
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return shouldRetry(urlErr.Err)
		}
	}

	return false
}

// retryDelay пауза перед следующей попыткой; для 429 берётся retry_after из ответа
func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	var tooMany *bot.TooManyRequestsError
	if errors.As(err, &tooMany) && tooMany.RetryAfter > 0 {
		return time.Duration(tooMany.RetryAfter) * time.Second
	}
	return backoff * time.Duration(attempt)
}

// isNotModified Telegram отвечает так на редактирование без изменений
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// sanitize убирает токен бота из текста ошибки
func sanitize(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}
