/*
Package ldap executes composed directory operations against an LDAP server.

It is the connection collaborator of the converter and hydrator packages: a
Client takes an operation.Operation, runs its pre-operations, the operation
itself and its post-operations, and returns the matching entries for queries.

# Execution

Every executed operation:

  - is logged at debug level with its sanitized log representation
  - runs inside an OpenTelemetry span named ldap.<Operation>
  - is retried with exponential backoff when the failure is retryable
  - is counted in the optional Prometheus Metrics

Directory errors are wrapped exactly once into an *LDAPError carrying the
operation, DN, result code and category. GetErrorCategory and IsNotFoundError
classify them.

# Configuration

ConnectionConfig is filled from struct defaults, optional .env files and the
LDAP_* environment variables:

	config, err := ldap.LoadConfig(".env")
	if err != nil {
		return err
	}
	client, err := ldap.Dial(ctx, config, ldap.WithMetrics(ldap.NewMetrics(prometheus.DefaultRegisterer)))
	if err != nil {
		return err
	}
	defer client.Close()

# Identifier Codecs

GUIDHandler and SIDHandler convert objectGUID and objectSid values between
their binary wire form and string form. The DN helpers parse, compare and
escape distinguished names.

# Logging

NewLogContext registers the ldap, converter and hydrator subsystems with
terraform-plugin-log. Levels are read from LDAPTOOLS_LOG_<SUBSYSTEM>.
*/
package ldap
