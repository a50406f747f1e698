package main

import (
	"context"
	"errors"

	"github.com/fsdevblog/qrshort/internal/app"
	"github.com/fsdevblog/qrshort/internal/bmeta"
	"github.com/fsdevblog/qrshort/internal/config"
)

// Заполняются через ldflags при сборке.
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	bmeta.Print(buildVersion, buildDate, buildCommit)

	appConf, confErr := config.LoadConfig()
	if confErr != nil {
		panic(confErr)
	}

	a := app.Must(app.New(*appConf))

	a.Logger.WithField("address", appConf.ServerAddress).Info("Starting server")
	if err := a.Run(); err != nil && !errors.Is(err, context.Canceled) {
		panic(err)
	}
}
