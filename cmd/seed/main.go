package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"staffdir/internal/auth"
	"staffdir/internal/config"
	"staffdir/internal/logging"
	"staffdir/internal/repository"
	"staffdir/internal/service"
	"staffdir/internal/validation"
)

func main() {
	source := flag.String("source", "", "employees JSON array: http(s) URL or file path")
	tokenFor := flag.String("token", "", "print a signed development session token for this auth id and exit")
	tokenTTL := flag.Duration("ttl", auth.DevTokenExpiry, "lifetime of the token printed by -token")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	if *tokenFor != "" {
		token, err := auth.NewJWTService(cfg.IDPSigningKey, cfg.IDPIssuer).IssueToken(*tokenFor, *tokenTTL)
		if err != nil {
			logger.Fatal("failed to issue token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -source <url|file> | -token <auth id>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := context.Background()
	logger.Info("starting seed", zap.String("source", *source), zap.String("driver", cfg.StoreDriver))

	repo, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to store", zap.Error(err))
	}
	defer closeStore(ctx) //nolint:errcheck

	rows, err := loadEmployees(ctx, *source)
	if err != nil {
		logger.Fatal("failed to load employees", zap.Error(err))
	}
	logger.Info("loaded employees", zap.Int("count", len(rows)))

	// No page cache here: the running server's cached renders expire on
	// their own TTL.
	svc := service.NewEmployeeService(repo, nil, nil, validation.NewManageSchema(cfg.StrictNames), logger)
	result, err := svc.ImportEmployees(ctx, rows)
	if err != nil {
		logger.Fatal("failed to seed employees", zap.Error(err))
	}

	for _, msg := range result.Errors {
		logger.Warn("skipped row", zap.String("reason", msg))
	}
	logger.Info("seed completed",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
}

// loadEmployees reads a JSON array of employees from a URL or a local file.
func loadEmployees(ctx context.Context, source string) ([]validation.EmployeeInput, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch from API: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("API returned status code: %d", resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		body = f
	}
	defer body.Close()

	var rows []validation.EmployeeInput
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return rows, nil
}
