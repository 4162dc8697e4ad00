package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/playmatatu/brickduel/internal/models"
)

var (
	ErrInvalidPIN     = errors.New("invalid PIN")
	ErrInvalidName    = errors.New("display name required")
	ErrNameTaken      = errors.New("display name already registered")
	ErrPlayerNotFound = errors.New("player not found")
)

const playerColumns = `id, display_name, pin_hash, created_at, games_played, games_won, best_score, last_active`

// ValidatePIN checks the PIN is exactly four digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 || !isDigits(pin) {
		return fmt.Errorf("%w: must be 4 digits", ErrInvalidPIN)
	}
	return nil
}

// HashPIN returns the bcrypt hash of a validated PIN.
func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// CheckPIN compares a PIN with a stored hash.
func CheckPIN(hash, pin string) error {
	if hash == "" {
		return ErrInvalidPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrInvalidPIN
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 32 {
		return "", ErrInvalidName
	}
	return name, nil
}

// CreatePlayer registers a new player with a hashed PIN.
func CreatePlayer(db *sqlx.DB, displayName, pin string) (*models.Player, error) {
	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}
	hash, err := HashPIN(pin)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM players WHERE lower(display_name)=lower($1))`, name); err != nil {
		return nil, fmt.Errorf("check display name: %w", err)
	}
	if exists {
		return nil, ErrNameTaken
	}

	var p models.Player
	err = db.Get(&p, `INSERT INTO players (display_name, pin_hash, created_at) VALUES ($1, $2, NOW()) RETURNING `+playerColumns, name, hash)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	log.Printf("[AUTH] player %d registered as %q", p.ID, p.DisplayName)
	return &p, nil
}

// UpsertPlayer creates the player or resets the PIN of an existing one.
func UpsertPlayer(db *sqlx.DB, displayName, pin string) (*models.Player, error) {
	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}
	hash, err := HashPIN(pin)
	if err != nil {
		return nil, err
	}

	var p models.Player
	err = db.Get(&p, `SELECT `+playerColumns+` FROM players WHERE lower(display_name)=lower($1)`, name)
	if err == sql.ErrNoRows {
		err = db.Get(&p, `INSERT INTO players (display_name, pin_hash, created_at) VALUES ($1, $2, NOW()) RETURNING `+playerColumns, name, hash)
		if err != nil {
			return nil, fmt.Errorf("insert player: %w", err)
		}
		return &p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}

	if _, err := db.Exec(`UPDATE players SET pin_hash=$1 WHERE id=$2`, hash, p.ID); err != nil {
		return nil, fmt.Errorf("update pin: %w", err)
	}
	p.PINHash = sql.NullString{String: hash, Valid: true}
	return &p, nil
}

// Authenticate looks the player up by display name and verifies the PIN.
func Authenticate(db *sqlx.DB, displayName, pin string) (*models.Player, error) {
	name, err := normalizeName(displayName)
	if err != nil {
		return nil, err
	}

	var p models.Player
	err = db.Get(&p, `SELECT `+playerColumns+` FROM players WHERE lower(display_name)=lower($1)`, name)
	if err == sql.ErrNoRows {
		// Same answer as a wrong PIN so names cannot be probed.
		return nil, ErrInvalidPIN
	}
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}
	if err := CheckPIN(p.PINHash.String, pin); err != nil {
		log.Printf("[AUTH] failed login for player %d", p.ID)
		return nil, err
	}

	if _, err := db.Exec(`UPDATE players SET last_active=NOW() WHERE id=$1`, p.ID); err != nil {
		log.Printf("[DB] failed to touch last_active for player %d: %v", p.ID, err)
	}
	return &p, nil
}

// GetPlayer loads a player by id.
func GetPlayer(db *sqlx.DB, id int) (*models.Player, error) {
	var p models.Player
	err := db.Get(&p, `SELECT `+playerColumns+` FROM players WHERE id=$1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
