package app

import (
	"entgo.io/ent/dialect"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordgym/internal/infrastructure/config"
	"github.com/eslsoft/wordgym/internal/infrastructure/server"
	"github.com/eslsoft/wordgym/internal/usecase"
	"github.com/eslsoft/wordgym/internal/usecase/backup"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Driver    dialect.Driver
	Server    *server.Server
	Datasets  usecase.DatasetUsecase
	Favorites usecase.FavoriteUsecase
	Quizzes   usecase.QuizUsecase
	Backup    *backup.Service
}
