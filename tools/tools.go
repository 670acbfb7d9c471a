//go:build tools

// Package tools pins the versions of development tools used on metricslog.
// Run the linter with: go run -modfile=tools/go.mod github.com/golangci/golangci-lint/cmd/golangci-lint run ./...
package tools

import _ "github.com/golangci/golangci-lint/cmd/golangci-lint"
