package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nairv/dailycollect/pkg/models"
	"github.com/nairv/dailycollect/pkg/store"
)

// ErrInvalidCredentials means the username/password pair did not match a
// stored user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HashPassword is a single unsalted sha256 pass, hex encoded. That is the
// scheme the Users dataset stores; changing it would invalidate every
// existing credential.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Service verifies and updates credentials against the Users dataset.
type Service struct {
	storage store.Store
}

// NewService creates an auth service over a Store implementation.
func NewService(s store.Store) *Service {
	return &Service{storage: s}
}

func (a *Service) loadUsers() ([]*models.User, error) {
	records, err := a.storage.Read(store.DatasetUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	users := make([]*models.User, len(records))
	for i, rec := range records {
		users[i] = models.UserFromRecord(rec)
	}
	return users, nil
}

// Verify checks a username/password pair and returns the matching user.
func (a *Service) Verify(username, password string) (*models.User, error) {
	users, err := a.loadUsers()
	if err != nil {
		return nil, err
	}

	hash := HashPassword(password)
	for _, user := range users {
		if user.Username == username && user.PasswordHash == hash {
			return user, nil
		}
	}
	logrus.WithField("username", username).Warn("login rejected")
	return nil, ErrInvalidCredentials
}

// ChangePassword verifies the old password, then replaces the stored hash
// and rewrites the Users dataset.
func (a *Service) ChangePassword(username, oldPassword, newPassword string) error {
	users, err := a.loadUsers()
	if err != nil {
		return err
	}

	oldHash := HashPassword(oldPassword)
	var target *models.User
	for _, user := range users {
		if user.Username == username && user.PasswordHash == oldHash {
			target = user
			break
		}
	}
	if target == nil {
		return ErrInvalidCredentials
	}
	target.PasswordHash = HashPassword(newPassword)

	records := make([]store.Record, len(users))
	for i, user := range users {
		records[i] = user.ToRecord()
	}
	if err := a.storage.Write(store.DatasetUsers, records); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}

	logrus.WithField("username", username).Info("password changed")
	return nil
}
