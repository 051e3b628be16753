// Package view carries per-request presentation state: flash messages stored
// in the cookie session between a redirect and the next render.
package view

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	flashSessionName = "flash-session"
	flashKeySuccess  = "success"
	flashKeyError    = "error"
)

func setFlash(c echo.Context, key, message string) {
	sess, _ := session.Get(flashSessionName, c)
	sess.AddFlash(message, key)
	sess.Save(c.Request(), c.Response())
}

// SetFlashSuccess sets a success flash message.
func SetFlashSuccess(c echo.Context, message string) {
	setFlash(c, flashKeySuccess, message)
}

// SetFlashError sets an error flash message.
func SetFlashError(c echo.Context, message string) {
	setFlash(c, flashKeyError, message)
}

// Flashes holds the messages consumed for one render.
type Flashes struct {
	Success []string
	Error   []string
}

// GetFlashes retrieves and clears flash messages from the session.
func GetFlashes(c echo.Context) Flashes {
	var flashes Flashes

	sess, _ := session.Get(flashSessionName, c)
	successFlashes := sess.Flashes(flashKeySuccess)
	errorFlashes := sess.Flashes(flashKeyError)

	for _, f := range successFlashes {
		if msg, ok := f.(string); ok {
			flashes.Success = append(flashes.Success, msg)
		}
	}
	for _, f := range errorFlashes {
		if msg, ok := f.(string); ok {
			flashes.Error = append(flashes.Error, msg)
		}
	}

	// Flashes() clears as it reads; persist the cleared session.
	if len(successFlashes) > 0 || len(errorFlashes) > 0 {
		_ = sess.Save(c.Request(), c.Response())
	}
	return flashes
}
