package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// AppEnv represents the application environment
type AppEnv string

const (
	AppEnvLocal       AppEnv = "local"
	AppEnvProduction  AppEnv = "production"
	AppEnvDevelopment AppEnv = "development"
	AppEnvTesting     AppEnv = "testing"
)

var appEnvNames = []AppEnv{AppEnvLocal, AppEnvProduction, AppEnvDevelopment, AppEnvTesting}

// ErrInvalidAppEnv is returned for names outside the AppEnv set
var ErrInvalidAppEnv = fmt.Errorf("not a valid AppEnv, try [%s]", joinNames(appEnvNames))

func (x AppEnv) String() string {
	return string(x)
}

// IsValid reports whether x is one of the declared environments
func (x AppEnv) IsValid() bool {
	return lo.Contains(appEnvNames, x)
}

// ParseAppEnv parses an environment name case-insensitively
func ParseAppEnv(name string) (AppEnv, error) {
	if x, ok := parseName(appEnvNames, name); ok {
		return x, nil
	}
	return AppEnv(""), fmt.Errorf("%s is %w", name, ErrInvalidAppEnv)
}

// ExportFormat represents an output syndication format
type ExportFormat string

const (
	ExportFormatRss  ExportFormat = "rss"
	ExportFormatAtom ExportFormat = "atom"
	ExportFormatJson ExportFormat = "json"
)

var exportFormatNames = []ExportFormat{ExportFormatRss, ExportFormatAtom, ExportFormatJson}

// ErrInvalidExportFormat is returned for names outside the ExportFormat set
var ErrInvalidExportFormat = fmt.Errorf("not a valid ExportFormat, try [%s]", joinNames(exportFormatNames))

func (x ExportFormat) String() string {
	return string(x)
}

// IsValid reports whether x is one of the declared formats
func (x ExportFormat) IsValid() bool {
	return lo.Contains(exportFormatNames, x)
}

// ParseExportFormat parses a format name case-insensitively
func ParseExportFormat(name string) (ExportFormat, error) {
	if x, ok := parseName(exportFormatNames, name); ok {
		return x, nil
	}
	return ExportFormat(""), fmt.Errorf("%s is %w", name, ErrInvalidExportFormat)
}

func parseName[T ~string](names []T, name string) (T, bool) {
	return lo.Find(names, func(n T) bool {
		return strings.EqualFold(string(n), strings.TrimSpace(name))
	})
}

func joinNames[T ~string](names []T) string {
	return strings.Join(lo.Map(names, func(n T, _ int) string { return string(n) }), ", ")
}
