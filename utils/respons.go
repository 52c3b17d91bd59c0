package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Envelope is the body of every API answer.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HTTPStatuser is implemented by errors that know their HTTP status.
type HTTPStatuser interface {
	HTTPStatus() int
}

const internalMessage = "internal server error"

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Envelope{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, Envelope{Message: err.Error()})
}

// RespondBindError answers a request whose body could not be decoded.
func RespondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Envelope{Message: "invalid request body: " + err.Error()})
}

// RespondServiceError maps err to its HTTP status. Server side failures are
// logged with their cause and answered with a generic message.
func RespondServiceError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	var statuser HTTPStatuser
	if errors.As(err, &statuser) {
		code = statuser.HTTPStatus()
	}

	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).WithError(err).Error("Request failed")
		c.JSON(code, Envelope{Message: internalMessage})
		return
	}
	c.JSON(code, Envelope{Message: err.Error()})
}
