package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sqliteDialector "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DefaultProfile names the credential row used when no profile is configured.
const DefaultProfile = "default"

var (
	// ErrUnsupportedDialect indicates that no GORM dialector is available for the scheme.
	ErrUnsupportedDialect = errors.New("credential_store.unsupported_dialect")

	errEmptyCredentialsURL = errors.New("credential_store.empty_credentials_url")
	errSQLiteEmptyPath     = errors.New("credential_store.sqlite.empty_path")
	errSQLiteInvalidURL    = errors.New("credential_store.sqlite.invalid_url")
	errUnsupportedNoScheme = errors.New("credential_store.unsupported_no_scheme")
)

// DatabaseCredentialStore persists the access token and user profile using
// GORM. The sqlite driver is the local-disk analog of browser storage:
// credentials survive process restarts until logout or refresh failure.
type DatabaseCredentialStore struct {
	db          *gorm.DB
	profile     string
	driverLabel string
}

// Driver exposes the selected database driver label.
func (store *DatabaseCredentialStore) Driver() string {
	return store.driverLabel
}

type credentialRecord struct {
	Profile     string `gorm:"column:profile;primaryKey"`
	AccessToken string `gorm:"column:access_token;not null"`
	UserJSON    string `gorm:"column:user_json;not null;default:''"`
	SavedAtUnix int64  `gorm:"column:saved_at_unix;not null"`
}

func (credentialRecord) TableName() string {
	return "credentials"
}

// NewDatabaseCredentialStore constructs a GORM-backed store for the named
// profile. An empty profile selects DefaultProfile.
func NewDatabaseCredentialStore(ctx context.Context, credentialsURL string, profile string) (*DatabaseCredentialStore, error) {
	if strings.TrimSpace(credentialsURL) == "" {
		return nil, fmt.Errorf("credential_store.open: %w", errEmptyCredentialsURL)
	}
	if strings.TrimSpace(profile) == "" {
		profile = DefaultProfile
	}
	dialector, driverLabel, err := resolveDialector(credentialsURL)
	if err != nil {
		return nil, err
	}
	gormDB, openErr := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if openErr != nil {
		return nil, fmt.Errorf("credential_store.open.%s: %w", driverLabel, openErr)
	}
	if migrateErr := gormDB.WithContext(ctx).AutoMigrate(&credentialRecord{}); migrateErr != nil {
		return nil, fmt.Errorf("credential_store.migrate.%s: %w", driverLabel, migrateErr)
	}
	return &DatabaseCredentialStore{
		db:          gormDB,
		profile:     profile,
		driverLabel: driverLabel,
	}, nil
}

// Save upserts the credential row for the profile.
func (store *DatabaseCredentialStore) Save(ctx context.Context, current Session) error {
	if strings.TrimSpace(current.AccessToken) == "" {
		return fmt.Errorf("credential_store.save.%s: %w", store.driverLabel, ErrEmptyAccessToken)
	}
	encoded, encodeErr := encodeUser(current.User)
	if encodeErr != nil {
		return encodeErr
	}
	record := credentialRecord{
		Profile:     store.profile,
		AccessToken: current.AccessToken,
		UserJSON:    encoded,
		SavedAtUnix: time.Now().UTC().Unix(),
	}
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("credential_store.save.%s: %w", store.driverLabel, err)
	}
	return nil
}

// Load returns the stored session for the profile.
func (store *DatabaseCredentialStore) Load(ctx context.Context) (Session, error) {
	var record credentialRecord
	err := store.db.WithContext(ctx).Where("profile = ?", store.profile).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, ErrNoSession)
		}
		return Session{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, err)
	}
	if strings.TrimSpace(record.AccessToken) == "" {
		return Session{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, ErrNoSession)
	}
	user, decodeErr := decodeUser(record.UserJSON)
	if decodeErr != nil {
		return Session{}, fmt.Errorf("credential_store.load.%s: %w", store.driverLabel, decodeErr)
	}
	return Session{AccessToken: record.AccessToken, User: user}, nil
}

// Clear deletes the credential row. Clearing an absent row is a no-op.
func (store *DatabaseCredentialStore) Clear(ctx context.Context) error {
	err := store.db.WithContext(ctx).
		Where("profile = ?", store.profile).
		Delete(&credentialRecord{}).Error
	if err != nil {
		return fmt.Errorf("credential_store.clear.%s: %w", store.driverLabel, err)
	}
	return nil
}

func resolveDialector(credentialsURL string) (gorm.Dialector, string, error) {
	parsed, err := url.Parse(credentialsURL)
	if err != nil {
		return nil, "", fmt.Errorf("credential_store.parse_url: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, "", fmt.Errorf("credential_store.dialect: %w", errUnsupportedNoScheme)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "postgres", "postgresql":
		return postgres.Open(credentialsURL), "postgres", nil
	case "sqlite", "sqlite3":
		dsn, dsnErr := buildSQLiteDSN(parsed)
		if dsnErr != nil {
			return nil, "", fmt.Errorf("credential_store.sqlite: %w", dsnErr)
		}
		return sqliteDialector.Open(dsn), "sqlite", nil
	default:
		return nil, "", fmt.Errorf("credential_store.dialect.%s: %w", strings.ToLower(parsed.Scheme), ErrUnsupportedDialect)
	}
}

func buildSQLiteDSN(parsed *url.URL) (string, error) {
	if parsed == nil {
		return "", errSQLiteInvalidURL
	}
	var builder strings.Builder
	switch {
	case parsed.Opaque != "":
		builder.WriteString(parsed.Opaque)
	case parsed.Host != "":
		builder.WriteString(parsed.Host)
		if parsed.Path != "" {
			if !strings.HasPrefix(parsed.Path, "/") {
				builder.WriteString("/")
			}
			builder.WriteString(parsed.Path)
		}
	default:
		builder.WriteString(parsed.Path)
	}
	if builder.Len() == 0 {
		return "", errSQLiteEmptyPath
	}
	if parsed.RawQuery != "" {
		builder.WriteString("?")
		builder.WriteString(parsed.RawQuery)
	}
	return builder.String(), nil
}
