package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"PhoneStore/app/models"
	"PhoneStore/app/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned on any login failure. The message
// never says whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// DefaultSessionTimeout is the sliding inactivity window for sessions
const DefaultSessionTimeout = 30 * time.Minute

type session struct {
	userID   uint
	username string
	role     string
	lastSeen time.Time
}

// AuthService handles user accounts, password hashing and in-memory
// sessions. Sessions live only as long as the process; a restart logs
// everyone out.
type AuthService struct {
	*BaseService
	auditSvc *AuditService

	mu       sync.Mutex
	sessions map[string]*session
	timeout  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, auditSvc *AuditService, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	return &AuthService{
		BaseService: &BaseService{db: db},
		auditSvc:    auditSvc,
		sessions:    make(map[string]*session),
		timeout:     timeout,
	}
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against its bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CreateUser creates a user with a validated, hashed password
func (s *AuthService) CreateUser(username, password, fullName, role string) (*models.User, error) {
	username, err := validation.Required("username", username)
	if err != nil {
		return nil, err
	}
	if err := validation.Password(password); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleCashier
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hash,
		FullName: fullName,
		Role:     role,
		IsActive: true,
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &validation.Error{Field: "username", Message: "already taken"}
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, wrapTx("create user", err)
	}
	return user, nil
}

// UpdatePassword re-hashes and stores a new password for the user
func (s *AuthService) UpdatePassword(userID uint, newPassword string) error {
	if err := validation.Password(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.WithTransaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user", userID)
		}
		user.Password = hash
		return tx.Save(&user).Error
	})
	if err != nil {
		return wrapTx("update password", err)
	}
	return nil
}

// Authenticate checks credentials and opens a session. On success it
// updates the user's last login time and returns the session token.
func (s *AuthService) Authenticate(username, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.Where("username = ? AND is_active = ?", username, true).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !CheckPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Save(&user).Error; err != nil {
		return "", nil, fmt.Errorf("error updating last login: %w", err)
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.sessions[token] = &session{
		userID:   user.ID,
		username: user.Username,
		role:     user.Role,
		lastSeen: now,
	}
	s.mu.Unlock()

	s.auditSvc.LogAction(user.Username, models.ActionLogin, "user", user.ID, "User logged in")
	return token, &user, nil
}

// IsSessionValid reports whether the token names a live session and,
// when it does, slides its inactivity window forward.
func (s *AuthService) IsSessionValid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Since(sess.lastSeen) > s.timeout {
		delete(s.sessions, token)
		return false
	}
	sess.lastSeen = time.Now()
	return true
}

// CurrentUser returns the user behind a live session token
func (s *AuthService) CurrentUser(token string) (*models.User, error) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok && time.Since(sess.lastSeen) > s.timeout {
		delete(s.sessions, token)
		ok = false
	}
	if ok {
		sess.lastSeen = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return nil, errors.New("session expired or unknown")
	}

	var user models.User
	if err := s.db.First(&user, sess.userID).Error; err != nil {
		return nil, notFound(err, "user", sess.userID)
	}
	return &user, nil
}

// Logout ends a session. Unknown tokens are a no-op.
func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	s.mu.Unlock()

	if ok {
		s.auditSvc.LogAction(sess.username, models.ActionLogout, "user", sess.userID, "User logged out")
	}
}

// Authorize reports whether the user's role is one of the allowed
// roles. Admin passes every check. The check is stateless: it reads
// the role off the user, not off any session.
func Authorize(user *models.User, roles ...string) bool {
	if user == nil || !user.IsActive {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

// GetUsers lists all users, active first
func (s *AuthService) GetUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("is_active DESC, username").Find(&users).Error
	return users, err
}

// DeactivateUser disables a user account without deleting it
func (s *AuthService) DeactivateUser(userID uint, actor string) error {
	err := s.WithTransaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user", userID)
		}
		user.IsActive = false
		return tx.Save(&user).Error
	})
	if err != nil {
		return wrapTx("deactivate user", err)
	}

	s.auditSvc.LogAction(actor, models.ActionUpdate, "user", userID, "User deactivated")
	return nil
}
