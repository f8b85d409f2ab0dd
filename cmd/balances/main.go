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

	"trustio-wallet-go/internal/common"
	"trustio-wallet-go/internal/config"
	"trustio-wallet-go/internal/models"

	"go.uber.org/zap"
)

func printTransaction(tx models.Transaction, isLast bool) {
	fmt.Printf("%s %-13s %12s %s  %s  [%s]  %s\n",
		common.BoxPrefix(isLast),
		tx.Type,
		tx.Amount.String(),
		tx.Asset,
		tx.Date,
		tx.Status,
		tx.Details)
}

func printAccount(account models.Account) {
	fmt.Printf("\n┌─ Account: %s (%s)\n", account.Username, account.Email)
	fmt.Printf("│  Balance:       %s %s\n", account.TotalAssets.String(), models.Asset)
	fmt.Printf("│  Monthly Yield: %s %s\n", account.MonthlyYield.String(), models.Asset)
	fmt.Printf("│  Transactions:  %d\n", len(account.Transactions))
	common.PrintBoxSeparator(78)

	if len(account.Transactions) == 0 {
		fmt.Println("└  (no transactions)")
		return
	}
	for i, tx := range account.Transactions {
		printTransaction(tx, i == len(account.Transactions)-1)
	}
}

func main() {
	userFlag := flag.String("user", "", "Email or username filter (optional, defaults to all accounts)")
	flag.Parse()

	logger, cleanup := common.InitializeLogger()
	defer cleanup()

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

	var accounts []models.Account
	if *userFlag != "" {
		account := services.Directory.Find(*userFlag)
		if account == nil {
			logger.Fatal("Account not found", zap.String("identifier", *userFlag))
		}
		accounts = []models.Account{*account}
	} else {
		accounts = services.Directory.Accounts()
	}

	common.PrintHeader("WALLET BALANCES", common.DefaultWidth)
	for _, account := range accounts {
		printAccount(account)
	}
	common.PrintFooter(fmt.Sprintf("%d account(s)", len(accounts)), common.DefaultWidth)
}
