/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"

	"trustio-wallet-go/internal/common"
	"trustio-wallet-go/internal/config"
	"trustio-wallet-go/internal/directory"
	"trustio-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type registration struct {
	username  string
	email     string
	password  string
	secretKey string
}

func parseAndValidateFlags() (*registration, error) {
	usernameFlag := flag.String("username", "", "Display name, unique case-insensitively (required)")
	emailFlag := flag.String("email", "", "Email address, unique (required)")
	passwordFlag := flag.String("password", "", "Login password (required)")
	secretKeyFlag := flag.String("secret-key", "", "Secret key gating outgoing transfers (required)")
	flag.Parse()

	if *usernameFlag == "" || *emailFlag == "" || *passwordFlag == "" || *secretKeyFlag == "" {
		return nil, fmt.Errorf("all flags are required: --username, --email, --password, --secret-key")
	}
	if len(*usernameFlag) < 2 {
		return nil, fmt.Errorf("username must be at least 2 characters")
	}
	if !emailRegex.MatchString(*emailFlag) {
		return nil, fmt.Errorf("invalid email format: %s", *emailFlag)
	}

	return &registration{
		username:  *usernameFlag,
		email:     *emailFlag,
		password:  *passwordFlag,
		secretKey: *secretKeyFlag,
	}, nil
}

func main() {
	logger, cleanup := common.InitializeLogger()
	defer cleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		logger.Fatal("Invalid flags", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	account := &models.Account{
		Username:     req.username,
		Email:        req.email,
		Password:     req.password,
		SecretKey:    req.secretKey,
		TotalAssets:  decimal.Zero,
		MonthlyYield: decimal.Zero,
	}

	if err := services.Directory.Register(ctx, account); err != nil {
		switch {
		case errors.Is(err, directory.ErrDuplicateEmail):
			logger.Fatal("Email already registered", zap.String("email", req.email))
		case errors.Is(err, directory.ErrDuplicateUsername):
			logger.Fatal("Username already taken", zap.String("username", req.username))
		default:
			logger.Fatal("Registration failed", zap.Error(err))
		}
	}

	common.PrintHeader("ACCOUNT REGISTERED", common.DefaultWidth)
	fmt.Printf("Username: %s\n", account.Username)
	fmt.Printf("Email:    %s\n", account.Email)
	fmt.Printf("Balance:  %s %s\n", account.TotalAssets.String(), models.Asset)
	common.PrintSeparator("=", common.DefaultWidth)
}
