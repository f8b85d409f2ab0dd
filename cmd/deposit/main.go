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
	"flag"
	"fmt"
	"time"

	"trustio-wallet-go/internal/common"
	"trustio-wallet-go/internal/config"
	"trustio-wallet-go/internal/flows"
	"trustio-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type depositRequest struct {
	user     string
	password string
	amount   decimal.Decimal
	network  string
	txId     string
}

func parseAndValidateFlags() (*depositRequest, error) {
	userFlag := flag.String("user", "", "Email or username (required)")
	passwordFlag := flag.String("password", "", "Password (required)")
	amountFlag := flag.String("amount", "", "Deposit amount (required)")
	networkFlag := flag.String("network", "TRC20", "Receiving network: TRC20, BEP20 or ERC20")
	txIdFlag := flag.String("txid", "", "Transaction hash of the payment (required)")
	flag.Parse()

	if *userFlag == "" || *passwordFlag == "" || *amountFlag == "" || *txIdFlag == "" {
		return nil, fmt.Errorf("all flags are required: --user, --password, --amount, --txid")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &depositRequest{
		user:     *userFlag,
		password: *passwordFlag,
		amount:   amount,
		network:  *networkFlag,
		txId:     *txIdFlag,
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

	networks, err := common.LoadNetworks(cfg.Flow.NetworksFile)
	if err != nil {
		logger.Fatal("Failed to load networks", zap.Error(err))
	}

	flow := flows.NewDepositFlow(services.Engine, networks, cfg.Flow)
	if err := flow.SelectNetwork(req.network); err != nil {
		logger.Fatal("Unknown network", zap.String("network", req.network), zap.Error(err))
	}
	if err := flow.SubmitAmount(req.amount); err != nil {
		logger.Fatal("Invalid deposit amount", zap.Error(err))
	}

	common.PrintHeader("DEPOSIT ORDER", common.DefaultWidth)
	fmt.Printf("Order:     %s\n", flow.OrderId())
	fmt.Printf("Network:   %s\n", flow.Network())
	fmt.Printf("Address:   %s\n", flow.Address())
	fmt.Printf("Amount:    %s %s\n", req.amount.String(), models.Asset)
	fmt.Printf("Expires:   %s\n", flow.Remaining().Round(time.Second))
	common.PrintSeparator("-", common.DefaultWidth)

	flow.OnLog(func(line string) { fmt.Println("  " + line) })

	if err := flow.Verify(ctx, req.txId); err != nil {
		fmt.Printf("\n%s\n", flow.Notice())
		logger.Fatal("Deposit verification failed", zap.Error(err))
	}

	receipt := flow.Receipt()
	updated := services.Directory.Find(account.Email)

	common.PrintHeader("DEPOSIT CONFIRMED", common.DefaultWidth)
	fmt.Printf("Hash:        %s\n", receipt.Hash)
	fmt.Printf("Block:       %d\n", receipt.Block)
	fmt.Printf("Network Fee: %s\n", receipt.Fee)
	fmt.Printf("Timestamp:   %s\n", receipt.Timestamp)
	fmt.Printf("New Balance: %s %s\n", updated.TotalAssets.String(), models.Asset)
	common.PrintFooter("Deposit complete", common.DefaultWidth)
}
