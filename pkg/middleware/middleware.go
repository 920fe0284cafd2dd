package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blood-helpline/pkg/clients/twilio"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// TwilioSignature rejects webhook requests whose X-Twilio-Signature does not
// match the URL Twilio called. publicBaseURL is the externally visible origin
// of this server, since the request may have passed through a proxy.
func TwilioSignature(validator twilio.SignatureValidator, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader("X-Twilio-Signature")
		if signature == "" {
			log.Printf("Rejected %s %s: missing Twilio signature", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		params := map[string]string{}
		if c.Request.Method == http.MethodPost {
			if err := c.Request.ParseForm(); err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			for key, values := range c.Request.PostForm {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
		}

		url := publicBaseURL + c.Request.URL.RequestURI()
		if !validator.Validate(url, params, signature) {
			log.Printf("Rejected %s %s: invalid Twilio signature", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
