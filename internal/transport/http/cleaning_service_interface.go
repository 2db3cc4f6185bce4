package http

import (
	"context"

	"github.com/Zeyna175/data-processor-app/internal/services"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

// CleaningServiceInterface defines the cleaning operations the handlers use
type CleaningServiceInterface interface {
	Analyze(ctx context.Context, path string, fileType domain.FileType) (*domain.AnalysisReport, error)
	Process(ctx context.Context, req services.ProcessRequest) (*services.ProcessResult, error)
}
