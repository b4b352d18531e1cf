package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordgym/internal/infrastructure/config"
	"github.com/eslsoft/wordgym/internal/infrastructure/metrics"
	"github.com/eslsoft/wordgym/internal/infrastructure/sheet"
	"github.com/eslsoft/wordgym/internal/repository"
	"github.com/eslsoft/wordgym/internal/usecase"
	"github.com/eslsoft/wordgym/internal/usecase/backup"
	"github.com/eslsoft/wordgym/internal/usecase/ingest"
)

func provideSheetFetcher(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) *sheet.Fetcher {
	return sheet.NewFetcher(cfg.Sheet, logger, sheet.WithMetrics(m))
}

func provideImportDefaults(cfg *config.Config) ingest.ImportOptions {
	return ingest.ImportOptions{
		OverrideExamples: cfg.Import.OverrideExamples,
		Normalize: ingest.NormalizeOptions{
			AutoExamples:  cfg.Import.AutoExamples,
			DefaultThemes: cfg.Import.DefaultThemes,
		},
	}
}

func provideWordLookup(uc usecase.DatasetUsecase) usecase.WordLookup {
	return uc
}

func provideQuizUsecase(cfg *config.Config, repo repository.QuizRecordRepository, logger *logrus.Logger) usecase.QuizUsecase {
	return usecase.NewQuizUsecase(repo, cfg.HistoryLimit(), logger)
}

func provideBackupService(words repository.WordRepository, favorites repository.FavoriteRepository, quizzes repository.QuizRecordRepository) (*backup.Service, error) {
	return backup.NewService(words, favorites, quizzes)
}
