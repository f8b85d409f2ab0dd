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

type transferRequest struct {
	user      string
	password  string
	secretKey string
	recipient string
	amount    decimal.Decimal
}

func parseAndValidateFlags() (*transferRequest, error) {
	userFlag := flag.String("user", "", "Email or username (required)")
	passwordFlag := flag.String("password", "", "Password (required)")
	secretKeyFlag := flag.String("secret-key", "", "Secret key authorizing the transfer (required)")
	recipientFlag := flag.String("recipient", "", "Recipient username or email (required)")
	amountFlag := flag.String("amount", "", "Amount to transfer (required)")
	flag.Parse()

	if *userFlag == "" || *passwordFlag == "" || *secretKeyFlag == "" || *recipientFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("all flags are required: --user, --password, --secret-key, --recipient, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &transferRequest{
		user:      *userFlag,
		password:  *passwordFlag,
		secretKey: *secretKeyFlag,
		recipient: *recipientFlag,
		amount:    amount,
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

	account, err := services.Directory.Login(ctx, req.user, req.password)
	if err != nil {
		logger.Fatal("Login failed", zap.Error(err))
	}

	common.PrintHeader("PEER TRANSFER", common.DefaultWidth)
	fmt.Printf("Sender:    %s (%s)\n", account.Username, account.Email)
	fmt.Printf("Balance:   %s %s\n", account.TotalAssets.String(), models.Asset)
	fmt.Printf("Recipient: %s\n", req.recipient)
	fmt.Printf("Amount:    %s %s\n", req.amount.String(), models.Asset)
	common.PrintSeparator("=", common.DefaultWidth)

	flow, err := flows.NewSecureSendFlow(services.Engine, account, flows.IntentTransfer, cfg.Flow)
	if err != nil {
		if errors.Is(err, flows.ErrRestricted) {
			fmt.Printf("\n%s\n", ledger.UserMessage(ledger.ErrBelowMinimumBalance))
		}
		logger.Fatal("Transfer not available", zap.Error(err))
	}

	if err := flow.SubmitDetails(req.recipient, req.amount); err != nil {
		logger.Fatal("Invalid transfer details", zap.Error(err))
	}

	if err := flow.Confirm(ctx, req.secretKey); err != nil {
		// Surface the precise ledger reason here; the flow itself only
		// carries the generic notice.
		if last := flow.LastError(); last != nil {
			fmt.Printf("\n%s\n", ledger.UserMessage(last))
			logger.Fatal("Transfer failed", zap.Error(last))
		}
		fmt.Printf("\n%s\n", flow.Notice())
		logger.Fatal("Transfer failed", zap.Error(err))
	}

	updated := services.Directory.Find(account.Email)
	fmt.Println("\nTransfer successful")
	common.PrintFooter(
		fmt.Sprintf("New balance %s %s", updated.TotalAssets.String(), models.Asset),
		common.DefaultWidth)
}
