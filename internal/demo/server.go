// Package demo is a small target server for exercising situation files
// locally: every validator, combinator, and script path a situation file can
// use can be driven against it without touching a real service.
package demo

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the demo server's routes.
func NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Any("/ok", func(c *gin.Context) {
		c.Header("X-Demo", "seatrial")
		c.String(http.StatusOK, "hi")
	})

	router.GET("/status/:code", func(c *gin.Context) {
		code, err := strconv.Atoi(c.Param("code"))
		if err != nil || code < 100 || code > 599 {
			c.String(http.StatusBadRequest, "bad status code %q", c.Param("code"))
			return
		}
		c.String(code, http.StatusText(code))
	})

	router.GET("/echo-headers", func(c *gin.Context) {
		out := make(map[string]string, len(c.Request.Header))
		for name := range c.Request.Header {
			out[name] = c.GetHeader(name)
		}
		c.JSON(http.StatusOK, out)
	})

	router.GET("/echo-params", func(c *gin.Context) {
		out := make(map[string]string)
		for name, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				out[name] = values[0]
			}
		}
		c.JSON(http.StatusOK, out)
	})

	router.GET("/slow", func(c *gin.Context) {
		ms := 1000
		if raw := c.Query("ms"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.String(http.StatusBadRequest, "bad ms %q", raw)
				return
			}
			ms = parsed
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		c.String(http.StatusOK, "finally")
	})

	return router
}

// Serve runs the demo server until the listener fails.
func Serve(addr string) error {
	return NewRouter().Run(addr)
}
