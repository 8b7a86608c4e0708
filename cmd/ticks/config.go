// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/bpowers/ticksio"
)

// config holds flag defaults, taken from the environment.
type config struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string
	// PriceScale is the number of decimal places prices are stored with.
	PriceScale int
	// BatchSize is how many CSV rows are parsed before being appended.
	BatchSize int
	// MaxChunkSize is the largest chunk, in bytes.
	MaxChunkSize int
}

const defaultBatchSize = 1 << 16

// loadConfig reads the environment, after loading a .env file from the
// working directory if there is one.
func loadConfig() config {
	_ = godotenv.Load() // Ignore error - .env is optional

	return config{
		LogLevel:     getEnv("TICKS_LOG_LEVEL", "info"),
		PriceScale:   getEnvInt("TICKS_PRICE_SCALE", 0),
		BatchSize:    getEnvInt("TICKS_BATCH_SIZE", defaultBatchSize),
		MaxChunkSize: getEnvInt("TICKS_MAX_CHUNK_SIZE", ticksio.DefaultMaxChunkSize),
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
