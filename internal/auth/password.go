package auth

import (
	"errors"
	"fmt"

	"github.com/GehirnInc/crypt"
	_ "github.com/GehirnInc/crypt/md5_crypt"
	_ "github.com/GehirnInc/crypt/sha256_crypt"
	_ "github.com/GehirnInc/crypt/sha512_crypt"

	"github.com/hnrobert/ttylogin/internal/usermgr"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserLocked         = errors.New("user is locked")
	ErrUnsupportedHash    = errors.New("unsupported password hash")
)

// verifyPassword checks password against the shadow entry of username. Hashes
// this package cannot verify fall back to su(1) when useSu is set.
func verifyPassword(shadowPath, username, password string, useSu bool) error {
	sh, err := usermgr.LoadShadow(shadowPath)
	if err != nil {
		return err
	}
	se := sh.Find(username)
	if se == nil {
		return ErrInvalidCredentials
	}
	if se.Locked() {
		return ErrUserLocked
	}
	ok, err := verifyCrypt(se.Hash, password)
	if err != nil {
		if !errors.Is(err, ErrUnsupportedHash) || !useSu {
			return err
		}
		ok, err = verifyWithSu(username, password)
		if err != nil {
			return err
		}
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// verifyCrypt checks password against a crypt(3) hash. Only the md5, sha256
// and sha512 schemes are implemented here; yescrypt, bcrypt and legacy DES
// hashes report ErrUnsupportedHash.
func verifyCrypt(hash, password string) (bool, error) {
	if !crypt.IsHashSupported(hash) {
		return false, ErrUnsupportedHash
	}
	if err := crypt.NewFromHash(hash).Verify(hash, []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

func HumanAuthError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrUserLocked):
		return "This account is locked."
	case errors.Is(err, ErrUnsupportedHash):
		return "This host uses a password hash format that cannot be verified here."
	case errors.Is(err, ErrAuthBackend):
		return "The system authentication backend is unavailable."
	default:
		return fmt.Sprintf("Authentication failed: %v", err)
	}
}
