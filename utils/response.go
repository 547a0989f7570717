package utils

import "github.com/gin-gonic/gin"

// Envelope is the response body for single-entity reads and writes.
type Envelope struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// ListEnvelope is the response body for article listings. TotalArticle counts
// the whole filtered set, independent of pagination.
type ListEnvelope struct {
	Data         interface{} `json:"data"`
	TotalArticle int64       `json:"total_article"`
	Message      string      `json:"message"`
}

// Respond writes a {data, message} body with the given status code.
func Respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, Envelope{Data: data, Message: message})
}

// RespondList writes a {data, total_article, message} body.
func RespondList(ctx *gin.Context, status int, data interface{}, total int64, message string) {
	ctx.JSON(status, ListEnvelope{Data: data, TotalArticle: total, Message: message})
}

// Message writes a body carrying only a message.
func Message(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// Fail writes an error body carrying only a message.
func Fail(ctx *gin.Context, status int, message string) {
	Message(ctx, status, message)
}
