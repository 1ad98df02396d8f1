package store

import (
	"strings"

	"github.com/vitalens/vitalens/internal/errors"
	"github.com/vitalens/vitalens/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// doctorNames is the fixed rotation of display names assigned at signup, in
// signup order. Accounts do not choose their own name.
var doctorNames = []string{
	"Dr. Emily Carter",
	"Dr. Ben Adams",
	"Dr. Olivia Chen",
	"Dr. Marcus Rodriguez",
	"Dr. Sofia Garcia",
	"Dr. Leo Kim",
	"Dr. Isabella Rossi",
	"Dr. Ethan Williams",
}

// GetUsers returns every account in signup order.
func (s *Store) GetUsers() []User {
	metrics.RecordStoreOp("users", "read")
	return readCollection[User](s, usersKey)
}

// AddUser creates an account. The doctor id must be unique case-insensitively;
// the display name is assigned from the fixed rotation indexed by the current
// account count. The password is stored as a bcrypt hash.
func (s *Store) AddUser(doctorID, password string) (User, error) {
	users := s.GetUsers()
	for _, u := range users {
		if u.DoctorID != "" && strings.EqualFold(u.DoctorID, doctorID) {
			return User{}, errors.ErrDuplicateAccount
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(err, "AUTH_004", "failed to hash password")
	}

	user := User{
		ID:        newRecordID("user"),
		Name:      doctorNames[len(users)%len(doctorNames)],
		DoctorID:  doctorID,
		Password:  string(hash),
		CreatedAt: nowISO(),
	}
	writeCollection(s, usersKey, append(users, user))

	metrics.RecordStoreOp("users", "create")
	s.Audit(user.ID, "signup", "users", user.ID, "ok")
	s.logger.Info("account created",
		zap.String("userId", user.ID), zap.String("name", user.Name))

	return user, nil
}

// FindUser matches credentials against the accounts: case-insensitive doctor
// id, then the password. It returns nil with no error when nothing matches;
// deciding how to surface bad credentials is the caller's job.
func (s *Store) FindUser(doctorID, password string) (*User, error) {
	metrics.RecordStoreOp("users", "read")
	for _, u := range readCollection[User](s, usersKey) {
		if u.DoctorID == "" || !strings.EqualFold(u.DoctorID, doctorID) {
			continue
		}
		if passwordMatches(u.Password, password) {
			match := u
			return &match, nil
		}
	}
	return nil, nil
}

// passwordMatches compares a candidate password against the stored secret.
// Rows written before hashing was introduced hold the password itself, so
// anything without a bcrypt prefix falls back to an exact comparison.
func passwordMatches(stored, candidate string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return stored == candidate
}
