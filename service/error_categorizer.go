package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// codeCategories maps domain error codes to categories
var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryConfig,
	domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeOracleUnavailable: domain.ErrorCategoryProcessing,
	domain.ErrCodeOracleTimeout:     domain.ErrorCategoryTimeout,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
}

// initializeErrorPatterns is the fallback for errors without a domain code.
// Checked in order.
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{"timeout", "deadline", "context canceled", "timed out"}},
		{domain.ErrorCategoryConfig, []string{"config", "toml", "yaml", "unknown flag"}},
		{domain.ErrorCategoryInput, []string{"no such file", "no python files", "cannot access", "permission denied"}},
		{domain.ErrorCategoryOutput, []string{"write", "output", "cannot create"}},
		{domain.ErrorCategoryProcessing, []string{"parse", "syntax", "analysis"}},
	}
}

// Categorize determines the category of an error. Domain error codes take
// precedence over message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := ec.categoryOf(err)
	message := err.Error()
	if category != domain.ErrorCategoryUnknown {
		message = ec.getCategoryMessage(category)
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categoryOf(err error) domain.ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ErrorCategoryTimeout
	}

	var derr domain.DomainError
	if errors.As(err, &derr) {
		if category, ok := codeCategories[derr.Code]; ok {
			return category
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, cp := range ec.patterns {
		if containsAnyPattern(errMsg, cp.patterns) {
			return cp.category
		}
	}
	return domain.ErrorCategoryUnknown
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that files/directories exist and contain Python files",
			"Ensure you have read permissions for the target files",
		},
		domain.ErrorCategoryConfig: {
			"Try: pyrefactor init to generate a valid config file",
			"Check for syntax errors in .pyrefactor.toml or pyproject.toml",
			"Thresholds between 0.0 and 1.0 apply to duplicate_threshold and prefilter_threshold",
		},
		domain.ErrorCategoryTimeout: {
			"Increase --timeout or --per-call-timeout",
			"Lower --max-concurrent-calls if the oracle provider is throttling",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions and output format validity",
			"Ensure output directory exists and is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Check that the oracle provider is reachable and the API key is set",
			"Run with --verbose for detailed error information",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to process input files or directories",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Analysis timed out or was cancelled",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error during code analysis processing",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An unexpected error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
