package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Miseong-debug/Stock-Portfolio/src/models"
)

const (
	pinHashKey        = "pin_hash"
	lastActivityKey   = "last_activity"
	failedAttemptsKey = "failed_attempts"
	lockoutUntilKey   = "lockout_until"
)

var (
	ErrPinNotSet    = errors.New("pin not set")
	ErrPinLockedOut = errors.New("pin entry locked out")
)

// PinService is the local re-authentication gate: a short numeric PIN
// that must be re-entered after a period of inactivity. Wrong entries
// count toward a temporary lockout. All state lives in the injected
// StateStore, keyed per user.
type PinService struct {
	store          models.StateStore
	maxAttempts    int
	lockoutPeriod  time.Duration
	sessionTimeout time.Duration
	now            func() time.Time
}

func NewPinService(store models.StateStore, maxAttempts int, lockoutPeriod, sessionTimeout time.Duration) *PinService {
	return &PinService{
		store:          store,
		maxAttempts:    maxAttempts,
		lockoutPeriod:  lockoutPeriod,
		sessionTimeout: sessionTimeout,
		now:            time.Now,
	}
}

// HashPin returns the hex-encoded SHA-256 of the PIN.
func HashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

func (p *PinService) IsPinSet(userID int64) (bool, error) {
	_, ok, err := p.store.Get(userID, pinHashKey)
	return ok, err
}

// SavePin stores the PIN hash and clears any failure state.
func (p *PinService) SavePin(userID int64, pin string) error {
	if err := p.store.Set(userID, pinHashKey, HashPin(pin)); err != nil {
		return fmt.Errorf("error saving pin: %w", err)
	}
	return p.resetFailedAttempts(userID)
}

// VerifyPin checks a PIN attempt. A wrong PIN increments the failure
// count; reaching the limit starts the lockout window. A correct PIN
// clears the failure state and refreshes the activity timestamp.
func (p *PinService) VerifyPin(userID int64, pin string) (bool, error) {
	locked, err := p.IsLockedOut(userID)
	if err != nil {
		return false, err
	}
	if locked {
		return false, ErrPinLockedOut
	}

	storedHash, ok, err := p.store.Get(userID, pinHashKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrPinNotSet
	}

	inputHash := HashPin(pin)
	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(inputHash)) != 1 {
		if _, err := p.incrementFailedAttempts(userID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := p.resetFailedAttempts(userID); err != nil {
		return false, err
	}
	if err := p.UpdateLastActivity(userID); err != nil {
		return false, err
	}
	return true, nil
}

// ChangePin verifies the current PIN, then stores the new one.
func (p *PinService) ChangePin(userID int64, currentPin, newPin string) (bool, error) {
	ok, err := p.VerifyPin(userID, currentPin)
	if err != nil || !ok {
		return false, err
	}
	return true, p.SavePin(userID, newPin)
}

// ClearPin removes the PIN and failure state so it can be set up again.
func (p *PinService) ClearPin(userID int64) error {
	if err := p.store.Delete(userID, pinHashKey); err != nil {
		return err
	}
	return p.resetFailedAttempts(userID)
}

// UpdateLastActivity refreshes the inactivity timer.
func (p *PinService) UpdateLastActivity(userID int64) error {
	millis := p.now().UnixMilli()
	return p.store.Set(userID, lastActivityKey, strconv.FormatInt(millis, 10))
}

// SessionExpired reports whether the inactivity window has passed since
// the last recorded activity. No recorded activity counts as expired.
func (p *PinService) SessionExpired(userID int64) (bool, error) {
	raw, ok, err := p.store.Get(userID, lastActivityKey)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true, nil
	}
	elapsed := p.now().Sub(time.UnixMilli(millis))
	return elapsed > p.sessionTimeout, nil
}

func (p *PinService) FailedAttempts(userID int64) (int, error) {
	raw, ok, err := p.store.Get(userID, failedAttemptsKey)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// IsLockedOut reports whether PIN entry is currently locked. An elapsed
// lockout clears the failure state.
func (p *PinService) IsLockedOut(userID int64) (bool, error) {
	raw, ok, err := p.store.Get(userID, lockoutUntilKey)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	until, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, p.resetFailedAttempts(userID)
	}
	if p.now().UnixMilli() >= until {
		return false, p.resetFailedAttempts(userID)
	}
	return true, nil
}

// LockoutRemaining returns the seconds left in the lockout window,
// rounded up, or 0 when not locked.
func (p *PinService) LockoutRemaining(userID int64) (int, error) {
	raw, ok, err := p.store.Get(userID, lockoutUntilKey)
	if err != nil || !ok {
		return 0, err
	}
	until, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	remaining := until - p.now().UnixMilli()
	if remaining <= 0 {
		return 0, nil
	}
	return int((remaining + 999) / 1000), nil
}

func (p *PinService) incrementFailedAttempts(userID int64) (int, error) {
	attempts, err := p.FailedAttempts(userID)
	if err != nil {
		return 0, err
	}
	attempts++
	if err := p.store.Set(userID, failedAttemptsKey, strconv.Itoa(attempts)); err != nil {
		return attempts, err
	}
	if attempts >= p.maxAttempts {
		until := p.now().Add(p.lockoutPeriod).UnixMilli()
		if err := p.store.Set(userID, lockoutUntilKey, strconv.FormatInt(until, 10)); err != nil {
			return attempts, err
		}
	}
	return attempts, nil
}

func (p *PinService) resetFailedAttempts(userID int64) error {
	if err := p.store.Delete(userID, failedAttemptsKey); err != nil {
		return err
	}
	return p.store.Delete(userID, lockoutUntilKey)
}
