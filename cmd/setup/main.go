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
	"trustio-wallet-go/internal/directory"
	"trustio-wallet-go/internal/models"

	"go.uber.org/zap"
)

func main() {
	themeFlag := flag.String("theme", "", "Display preference to store: light, dark or system (optional)")
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

	if *themeFlag != "" {
		theme := models.Theme(*themeFlag)
		if err := services.Directory.SetTheme(ctx, theme); err != nil {
			logger.Fatal("Failed to store theme preference", zap.Error(err))
		}
		fmt.Printf("Theme preference set to %q\n", theme)
	}

	operator := services.Directory.Find(directory.OperatorEmail)
	if operator == nil {
		// Reconciliation guarantees the operator exists after load.
		logger.Fatal("Operator account missing after reconciliation")
	}

	common.PrintHeader("WALLET STORE INITIALIZED", common.DefaultWidth)
	fmt.Printf("Database:          %s\n", cfg.Database.Path)
	fmt.Printf("Accounts:          %d\n", len(services.Directory.Accounts()))
	fmt.Printf("Theme:             %s\n", services.Directory.Theme())
	fmt.Printf("Operator:          %s (%s)\n", operator.Username, operator.Email)
	fmt.Printf("Operator Balance:  %s %s\n", operator.TotalAssets.String(), models.Asset)
	fmt.Printf("Operator History:  %d transaction(s)\n", len(operator.Transactions))
	common.PrintFooter("Setup complete", common.DefaultWidth)
}
