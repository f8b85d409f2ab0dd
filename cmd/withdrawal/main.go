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

	"trustio-wallet-go/internal/common"
	"trustio-wallet-go/internal/config"
	"trustio-wallet-go/internal/flows"
	"trustio-wallet-go/internal/ledger"
	"trustio-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type withdrawalRequest struct {
	user        string
	password    string
	secretKey   string
	amount      decimal.Decimal
	destination string
}

func parseAndValidateFlags() (*withdrawalRequest, error) {
	userFlag := flag.String("user", "", "Email or username (required)")
	passwordFlag := flag.String("password", "", "Password (required)")
	secretKeyFlag := flag.String("secret-key", "", "Secret key authorizing the withdrawal (required)")
	amountFlag := flag.String("amount", "", "Amount to withdraw (required)")
	destinationFlag := flag.String("destination", "", "Destination address (required)")
	flag.Parse()

	if *userFlag == "" || *passwordFlag == "" || *secretKeyFlag == "" || *amountFlag == "" || *destinationFlag == "" {
		return nil, fmt.Errorf("all flags are required: --user, --password, --secret-key, --amount, --destination")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &withdrawalRequest{
		user:        *userFlag,
		password:    *passwordFlag,
		secretKey:   *secretKeyFlag,
		amount:      amount,
		destination: *destinationFlag,
	}, nil
}

func printWithdrawalSummary(account *models.Account, amount, fee decimal.Decimal, destination string) {
	common.PrintHeader("WITHDRAWAL REQUEST", common.DefaultWidth)
	fmt.Printf("Account:           %s (%s)\n", account.Username, account.Email)
	fmt.Printf("Current Balance:   %s %s\n", account.TotalAssets.String(), models.Asset)
	fmt.Printf("Withdrawal Amount: %s %s\n", amount.String(), models.Asset)
	fmt.Printf("Network Fee:       %s %s\n", fee.String(), models.Asset)
	fmt.Printf("Destination:       %s\n", destination)
	common.PrintSeparator("=", common.DefaultWidth)
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

	account, err := services.Directory.Login(ctx, req.user, req.password)
	if err != nil {
		logger.Fatal("Login failed", zap.Error(err))
	}

	printWithdrawalSummary(account, req.amount, cfg.Flow.WithdrawFee, req.destination)

	flow, err := flows.NewSecureSendFlow(services.Engine, account, flows.IntentWithdraw, cfg.Flow)
	if err != nil {
		if errors.Is(err, flows.ErrRestricted) {
			fmt.Printf("\n%s\n", ledger.UserMessage(ledger.ErrBelowMinimumBalance))
		}
		logger.Fatal("Withdrawal not available", zap.Error(err))
	}

	if err := flow.SubmitDetails(req.destination, req.amount); err != nil {
		logger.Fatal("Invalid withdrawal details", zap.Error(err))
	}

	if err := flow.Confirm(ctx, req.secretKey); err != nil {
		fmt.Printf("\n%s\n", flow.Notice())
		if last := flow.LastError(); last != nil {
			logger.Fatal("Withdrawal failed", zap.Error(last))
		}
		logger.Fatal("Withdrawal failed", zap.Error(err))
	}

	updated := services.Directory.Find(account.Email)
	common.PrintFooter(
		fmt.Sprintf("Withdrawal complete - new balance %s %s", updated.TotalAssets.String(), models.Asset),
		common.DefaultWidth)
}
