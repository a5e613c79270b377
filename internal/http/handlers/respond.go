package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Trishit-H/tourhub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// package-wide response settings, written once at startup and read-only after
var (
	devMode bool
	logger  = slog.Default()
)

// Configure sets the environment-dependent verbosity for error payloads.
func Configure(env string, log *slog.Logger) {
	devMode = env == "dev"
	if log != nil {
		logger = log
	}
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

func RespondList(ctx *gin.Context, results, total int, data any) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": results,
		"total":   total,
		"data":    data,
	})
}

// RespondError is the single choke point for failures: operational errors
// surface verbatim as "fail"/"error" by class, anything unexpected is logged
// server-side and masked outside dev mode.
func RespondError(ctx *gin.Context, err error) {
	appErr := apperr.From(err)

	statusWord := "fail"
	if appErr.Status >= http.StatusInternalServerError {
		statusWord = "error"
	}

	if appErr.Operational {
		ctx.JSON(appErr.Status, gin.H{
			"status":  statusWord,
			"message": appErr.Message,
		})
		return
	}

	logger.Error("unexpected error",
		"err", appErr.Err,
		"request_id", requestIDFrom(ctx),
		"route", ctx.FullPath(),
	)

	if devMode {
		ctx.JSON(appErr.Status, gin.H{
			"status":  "error",
			"message": appErr.Message,
			"error":   fmt.Sprintf("%v", appErr.Err),
			"stack":   string(debug.Stack()),
		})
		return
	}

	ctx.JSON(appErr.Status, gin.H{
		"status":  "error",
		"message": "Something went very wrong!",
	})
}
