// internal/app/features/modules/handler.go
package modules

import (
	"fmt"
	"time"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"go.uber.org/zap"
)

// Handler serves module detail, generated module content, material
// downloads and the module editor.
type Handler struct {
	Hub      *sessionhub.Hub
	Content  contentgen.Service
	Limiter  *ratelimit.Limiter // content requests per session
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger

	now func() time.Time
}

func NewHandler(hub *sessionhub.Hub, content contentgen.Service, limiter *ratelimit.Limiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		Content:  content,
		Limiter:  limiter,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		now:      time.Now,
	}
}

type materialRow struct {
	Index int
	Name  string
	Type  string
	Size  string
}

// humanSize formats the decoded size of a base64 payload.
func humanSize(encodedLen int) string {
	n := float64(encodedLen) * 3 / 4
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", n/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", n/(1<<10))
	default:
		return fmt.Sprintf("%.0f B", n)
	}
}
