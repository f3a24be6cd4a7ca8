// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"

	"github.com/msksk8cool/sk8school-bot/internal/app"
	"github.com/msksk8cool/sk8school-bot/internal/config"
	"github.com/msksk8cool/sk8school-bot/pkg/common"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infof("starting sk8school bot..")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	if err := common.SetupLogging(cfg.Environment, cfg.LogLevel); err != nil {
		logrus.Fatalf("failed to setup logging: %v", err)
	}

	ctx := context.Background()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logrus.Fatalf("application stopped with error: %v", err)
	}
}
