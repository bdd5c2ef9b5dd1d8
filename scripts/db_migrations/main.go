package main

import (
	"github.com/sirupsen/logrus"

	server_config "github.com/carson-networks/ledger-forensics/internal/config"
	"github.com/carson-networks/ledger-forensics/internal/logging"
	"github.com/carson-networks/ledger-forensics/internal/storage"
)

func main() {
	logging.SetupLogging(false)

	env, err := server_config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}

	store, err := storage.NewStorage(env)
	if err != nil {
		logrus.WithError(err).Fatal("storage.NewStorage")
		return
	}
	defer store.Close()

	preMigrationVersion, postMigrationVersion, err := store.Migrate()
	if err != nil {
		logrus.WithError(err).Fatal("storage.Migrate")
		return
	}

	logrus.WithFields(logrus.Fields{
		"address":              env.PostgresAddress,
		"database":             env.PostgresDB,
		"preMigrationVersion":  preMigrationVersion,
		"postMigrationVersion": postMigrationVersion,
	}).Info("Migrations applied")
}
