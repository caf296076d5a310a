package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nairv/dailycollect/pkg/auth"
	"github.com/nairv/dailycollect/pkg/config"
	"github.com/nairv/dailycollect/pkg/models"
	"github.com/nairv/dailycollect/pkg/store"
)

// seedUsers creates the initial operator account when the Users dataset
// is empty, so a fresh database is usable without hand-editing it.
func seedUsers(s store.Store, cfg *config.Config) error {
	records, err := s.Read(store.DatasetUsers)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		return nil
	}

	admin := &models.User{
		Username:     cfg.AdminUser,
		Name:         cfg.AdminName,
		PasswordHash: auth.HashPassword(cfg.AdminPass),
	}
	if err := s.Write(store.DatasetUsers, []store.Record{admin.ToRecord()}); err != nil {
		return err
	}
	logrus.WithField("username", cfg.AdminUser).Info("seeded initial user")
	return nil
}

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	sqliteStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize store")
	}
	defer sqliteStore.Close()

	if err := seedUsers(sqliteStore, cfg); err != nil {
		logrus.WithError(err).Fatal("failed to seed users")
	}

	cached := store.NewCachedStore(sqliteStore, cfg.CacheTTL)
	server := NewServer(cached, cfg.SessionTTL)

	logrus.WithField("port", cfg.Port).Info("server starting")
	logrus.Fatal(http.ListenAndServe(":"+cfg.Port, server.Router()))
}
