package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"invoicing/internal/notify"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	flashMaxAge = 60 // seconds; the next page load consumes it
)

type flashKey struct{}

// flashBox collects the notifications raised while handling one request.
type flashBox struct {
	mu    sync.Mutex
	items []notify.Notification
}

func (b *flashBox) add(n notify.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

func (b *flashBox) drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items
	b.items = nil
	return items
}

// Flash attaches a notification box to each request so FlashNotifier can
// reach it through the request context.
func Flash() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), flashKey{}, &flashBox{})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// FlashNotifier shows notifications on the next rendered page.
type FlashNotifier struct{}

func (FlashNotifier) Notify(ctx context.Context, n notify.Notification) {
	if box, ok := ctx.Value(flashKey{}).(*flashBox); ok {
		box.add(n)
	}
}

func boxOf(c *gin.Context) *flashBox {
	box, _ := c.Request.Context().Value(flashKey{}).(*flashBox)
	return box
}

// redirect carries pending notifications across the redirect in a one-shot cookie.
func redirect(c *gin.Context, code int, location string) {
	if box := boxOf(c); box != nil {
		if items := box.drain(); len(items) > 0 {
			if value, err := encodeFlash(items); err == nil {
				setFlashCookie(c, value, flashMaxAge)
			}
		}
	}
	c.Redirect(code, location)
}

// takeFlashes returns the notifications carried over by a redirect followed
// by those raised during this request, and clears the cookie.
func takeFlashes(c *gin.Context) []notify.Notification {
	var out []notify.Notification
	if value, err := c.Cookie(flashCookie); err == nil && value != "" {
		if carried, err := decodeFlash(value); err == nil {
			out = append(out, carried...)
		}
		setFlashCookie(c, "", -1)
	}
	if box := boxOf(c); box != nil {
		out = append(out, box.drain()...)
	}
	return out
}

func setFlashCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, value, maxAge, "/", "", false, true)
}

func encodeFlash(items []notify.Notification) (string, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeFlash(value string) ([]notify.Notification, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var items []notify.Notification
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
