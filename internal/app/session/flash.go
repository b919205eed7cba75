package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// AddFlash queues a one-shot message for the next rendered page.
func AddFlash(c *gin.Context, message string) {
	sess := sessions.Default(c)
	sess.AddFlash(message)
	_ = sess.Save()
}

// PopFlash returns the oldest queued flash message, consuming it.
func PopFlash(c *gin.Context) string {
	sess := sessions.Default(c)
	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	_ = sess.Save()
	if msg, ok := flashes[0].(string); ok {
		return msg
	}
	return ""
}
