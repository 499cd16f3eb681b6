package ldap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Logging subsystems. Each level is read from LDAPTOOLS_LOG_<SUBSYSTEM>.
const (
	SubsystemLDAP      = "ldap"
	SubsystemConverter = "converter"
	SubsystemHydrator  = "hydrator"
)

// NewLogContext registers the toolkit's logging subsystems on ctx.
func NewLogContext(ctx context.Context) context.Context {
	for _, subsystem := range []string{SubsystemLDAP, SubsystemConverter, SubsystemHydrator} {
		ctx = tflog.NewSubsystem(ctx, subsystem,
			tflog.WithLevelFromEnv("LDAPTOOLS_LOG_"+strings.ToUpper(subsystem)))
	}
	return ctx
}

// LogOperation is a helper function to log an operation with timing.
func LogOperation(ctx context.Context, subsystem, operation string, fields map[string]any, fn func() error) error {
	start := time.Now()

	if fields == nil {
		fields = make(map[string]any)
	}
	fields["operation"] = operation

	tflog.SubsystemDebug(ctx, subsystem, "Starting operation", fields)

	err := fn()

	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		fields["error"] = err.Error()
		tflog.SubsystemDebug(ctx, subsystem, "Operation failed", fields)
	} else {
		tflog.SubsystemDebug(ctx, subsystem, "Operation completed successfully", fields)
	}

	return err
}

// LogLDAPError logs LDAP-specific error information.
func LogLDAPError(ctx context.Context, subsystem string, operation string, err error, fields map[string]any) {
	if fields == nil {
		fields = make(map[string]any)
	}

	fields["operation"] = operation
	fields["error"] = err.Error()

	var resultErr *ldap.Error
	if errors.As(err, &resultErr) {
		fields["ldap_result_code"] = resultErr.ResultCode
		if resultErr.MatchedDN != "" {
			fields["ldap_matched_dn"] = resultErr.MatchedDN
		}
		if resultErr.Err != nil {
			fields["ldap_diagnostic_message"] = resultErr.Err.Error()
		}
	}

	fields["category"] = string(GetErrorCategory(err))
	fields["retryable"] = IsRetryableError(err)

	tflog.SubsystemError(ctx, subsystem, "LDAP operation failed", fields)
}

// SanitizeFields removes sensitive information from log fields.
func SanitizeFields(fields map[string]any) map[string]any {
	sanitized := make(map[string]any, len(fields))

	for k, v := range fields {
		if isSensitiveKey(k) {
			sanitized[k] = "[REDACTED]"
			continue
		}
		if str, ok := v.(string); ok && containsSensitivePattern(str) {
			sanitized[k] = "[REDACTED]"
			continue
		}
		sanitized[k] = v
	}

	return sanitized
}

var sensitiveKeys = map[string]bool{
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"key":           true,
	"private_key":   true,
	"credential":    true,
	"credentials":   true,
	"bind_password": true,
}

func isSensitiveKey(k string) bool {
	return sensitiveKeys[strings.ToLower(strings.ReplaceAll(k, " ", "_"))]
}

// containsSensitivePattern checks if a string contains patterns that might be sensitive.
func containsSensitivePattern(s string) bool {
	return containsAny(strings.ToLower(s),
		"password=",
		"passwd=",
		"secret=",
		"token=",
		"key=",
	)
}
