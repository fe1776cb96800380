// Command sessionctl writes or inspects the service-account session used by
// the snapshot job.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"comms-metrics-backend/config"
	"comms-metrics-backend/internal/model"
	"comms-metrics-backend/internal/session"
)

type ctlConfig struct {
	path    string
	show    bool
	session model.Session
}

var errTokenRequired = errors.New("-token is required (or set SESSION_TOKEN)")

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := parseFlags()
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("sessionctl failed")
	}
}

func parseFlags() ctlConfig {
	defaultPath := "./service_session.json"
	if appCfg, err := config.NewConfig(); err == nil && appCfg.Session.FilePath != "" {
		defaultPath = appCfg.Session.FilePath
	}

	var cfg ctlConfig
	flag.StringVar(&cfg.path, "file", defaultPath, "session file path")
	flag.BoolVar(&cfg.show, "show", false, "print the stored session with the token masked")
	flag.StringVar(&cfg.session.Token, "token", os.Getenv("SESSION_TOKEN"), "auth token")
	flag.StringVar(&cfg.session.UserID, "user-id", os.Getenv("SESSION_USER_ID"), "user id")
	flag.StringVar(&cfg.session.TenantID, "tenant-id", os.Getenv("SESSION_TENANT_ID"), "tenant id")
	flag.StringVar(&cfg.session.TenantName, "tenant-name", os.Getenv("SESSION_TENANT_NAME"), "tenant display name")
	flag.StringVar(&cfg.session.DealerID, "dealer-id", os.Getenv("SESSION_DEALER_ID"), "dealer id")
	flag.StringVar(&cfg.session.RoleID, "role-id", os.Getenv("SESSION_ROLE_ID"), "role id")
	flag.Parse()

	return cfg
}

func run(cfg ctlConfig) error {
	store := session.NewStore(cfg.path)

	if cfg.show {
		sess, err := store.Load()
		if err != nil {
			return err
		}
		fmt.Printf("file:        %s\n", store.Path())
		fmt.Printf("token:       %s\n", maskToken(sess.Token))
		fmt.Printf("user id:     %s\n", sess.UserID)
		fmt.Printf("tenant:      %s (%s)\n", sess.TenantID, sess.TenantName)
		fmt.Printf("dealer id:   %s\n", sess.DealerID)
		fmt.Printf("role id:     %s\n", sess.RoleID)
		return nil
	}

	if strings.TrimSpace(cfg.session.Token) == "" {
		return errTokenRequired
	}
	if err := store.Save(cfg.session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	log.Info().Str("file", store.Path()).Str("user_id", cfg.session.UserID).Msg("Session saved")
	return nil
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
