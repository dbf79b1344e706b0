package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/amberleaf/teactl/internal/adminapi"
	"github.com/amberleaf/teactl/internal/guard"
	"github.com/amberleaf/teactl/internal/permissions"
	"github.com/amberleaf/teactl/internal/render"
	"github.com/amberleaf/teactl/internal/session"
	"github.com/amberleaf/teactl/internal/telemetry"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

const (
	configCodeInvalidBaseURL        = "config.invalid_api_base_url"
	configCodeInvalidTimeout        = "config.invalid_request_timeout"
	configCodeCredentialsResolution = "config.credentials_url_resolution"
	configCodeUninitializedConf     = "config.uninitialized_client_config"
)

// Permission keys mirror the admin panel's feature areas.
const (
	areaDashboard   = "dashboard"
	areaOrders      = "orders"
	areaCustomers   = "customers"
	areaTeas        = "tea-management"
	areaIngredients = "manage-ingredients"
	areaDiscounts   = "discount"
	areaReviews     = "reviews"
	areaSettings    = "settings"
	areaManageUsers = "manage-users"
)

var (
	errNotLoggedIn      = errors.New("teactl.not_logged_in")
	errPermissionDenied = errors.New("teactl.permission_denied")
)

type contextKey string

const clientConfigContextKey contextKey = "clientConfig"

type clientConfig struct {
	apiBaseURL     string
	credentialsURL string
	profile        string
	requestTimeout time.Duration
	verbose        bool
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "teactl",
		Short:             "Admin client for the tea shop backend: orders, catalog, discounts, and user management",
		PersistentPreRunE: prepareClientConfig,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().String("api_base_url", adminapi.DefaultBaseURL, "Base URL of the admin REST API")
	rootCmd.PersistentFlags().String("credentials_url", "", "Credential store URL (sqlite:// or postgres://; empty selects a sqlite file under the home directory)")
	rootCmd.PersistentFlags().String("profile", session.DefaultProfile, "Named credential profile")
	rootCmd.PersistentFlags().Duration("request_timeout", adminapi.DefaultTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	_ = viper.BindPFlag("api_base_url", rootCmd.PersistentFlags().Lookup("api_base_url"))
	_ = viper.BindPFlag("credentials_url", rootCmd.PersistentFlags().Lookup("credentials_url"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("request_timeout", rootCmd.PersistentFlags().Lookup("request_timeout"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("TEACTL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newWhoAmICommand(),
		newChangePasswordCommand(),
		newDashboardCommand(),
		newOrdersCommand(),
		newCustomersCommand(),
		newTeasCommand(),
		newIngredientsCommand(),
		newDiscountsCommand(),
		newUsersCommand(),
		newReviewsCommand(),
	)

	return rootCmd
}

func configError(code string, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

func prepareClientConfig(command *cobra.Command, arguments []string) error {
	configuration, loadErr := loadClientConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, clientConfigContextKey, configuration))
	return nil
}

func loadClientConfig() (clientConfig, error) {
	apiBaseURL := viper.GetString("api_base_url")
	parsed, parseErr := url.Parse(apiBaseURL)
	if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return clientConfig{}, configError(configCodeInvalidBaseURL, "api_base_url must be an absolute http(s) URL")
	}

	requestTimeout := viper.GetDuration("request_timeout")
	if requestTimeout <= 0 {
		return clientConfig{}, configError(configCodeInvalidTimeout, "request_timeout must be greater than zero")
	}

	credentialsURL := viper.GetString("credentials_url")
	if credentialsURL == "" {
		resolved, resolveErr := defaultCredentialsURL()
		if resolveErr != nil {
			return clientConfig{}, fmt.Errorf("%s: %w", configCodeCredentialsResolution, resolveErr)
		}
		credentialsURL = resolved
	}

	return clientConfig{
		apiBaseURL:     apiBaseURL,
		credentialsURL: credentialsURL,
		profile:        viper.GetString("profile"),
		requestTimeout: requestTimeout,
		verbose:        viper.GetBool("verbose"),
	}, nil
}

// defaultCredentialsURL points the sqlite store at a per-user file, the
// local analog of the browser storage the panel kept its token in.
func defaultCredentialsURL() (string, error) {
	home, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return "", homeErr
	}
	directory := filepath.Join(home, ".teactl")
	if mkdirErr := os.MkdirAll(directory, 0o700); mkdirErr != nil {
		return "", mkdirErr
	}
	return "sqlite://" + filepath.Join(directory, "credentials.db"), nil
}

// appContext wires one invocation's collaborators. Everything is built
// fresh per command; there is no ambient shared state.
type appContext struct {
	configuration clientConfig
	logger        *zap.Logger
	store         session.CredentialStore
	client        *adminapi.Client
	registry      *permissions.Registry
	events        *telemetry.CounterMetrics
}

func loadApp(command *cobra.Command) (*appContext, func(), error) {
	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(clientConfigContextKey)
	}
	configuration, ok := contextValue.(clientConfig)
	if !ok {
		return nil, nil, configError(configCodeUninitializedConf, "client configuration not prepared; PersistentPreRunE must execute before RunE")
	}

	logger, loggerErr := buildLogger(configuration.verbose)
	if loggerErr != nil {
		return nil, nil, loggerErr
	}
	cleanup := func() { _ = logger.Sync() }

	store, storeErr := session.NewDatabaseCredentialStore(commandContext, configuration.credentialsURL, configuration.profile)
	if storeErr != nil {
		cleanup()
		return nil, nil, storeErr
	}

	events := telemetry.NewCounterMetrics()
	client, clientErr := adminapi.New(adminapi.Config{
		BaseURL: configuration.apiBaseURL,
		Store:   store,
		Logger:  logger,
		Events:  events,
		Timeout: configuration.requestTimeout,
	})
	if clientErr != nil {
		cleanup()
		return nil, nil, clientErr
	}

	return &appContext{
		configuration: configuration,
		logger:        logger,
		store:         store,
		client:        client,
		registry:      permissions.NewRegistry(store, client, logger),
		events:        events,
	}, cleanup, nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// requireArea runs the session gate and then the permission gate for the
// feature area, printing the denial notice when the second gate refuses.
func (app *appContext) requireArea(ctx context.Context, command *cobra.Command, areaKey string) error {
	sessionDecision, sessionErr := guard.CheckSession(ctx, app.store)
	if sessionErr != nil {
		return sessionErr
	}
	if !sessionDecision.Allowed {
		command.PrintErrln("not logged in; run 'teactl login'")
		return errNotLoggedIn
	}
	gate := guard.NewPermissionGuard(app.registry, areaKey, "")
	decision, evalErr := gate.Evaluate(ctx)
	if evalErr != nil {
		return evalErr
	}
	if decision.State == guard.StateDenied {
		command.PrintErrln(render.Denied(decision.Message, decision.RedirectTo))
		return errPermissionDenied
	}
	return nil
}
