package doctor

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/techtime/deskaide/internal/config"
)

// SecuritySeverity represents the severity of a security finding.
type SecuritySeverity string

const (
	SeverityInfo     SecuritySeverity = "info"
	SeverityWarning  SecuritySeverity = "warning"
	SeverityCritical SecuritySeverity = "critical"
)

// SecurityFinding represents a security-related finding.
type SecurityFinding struct {
	Severity SecuritySeverity
	Message  string
}

// SecurityAudit aggregates security findings.
type SecurityAudit struct {
	Findings []SecurityFinding
}

// AuditSecurity inspects the config file's permissions and the
// sidecar's bind address for common hazards: a world-writable config
// file can be used to smuggle a malicious default_provider or
// protected-path override in, and a sidecar bound to a non-loopback
// address exposes an unauthenticated local model to the network.
func AuditSecurity(cfg *config.Config, configPath string) SecurityAudit {
	audit := SecurityAudit{}

	if configPath != "" {
		if info, err := os.Stat(configPath); err == nil {
			appendPermFindings(&audit, "config file", configPath, info.Mode())
		}
	}

	if cfg != nil {
		if dbPath := strings.TrimSpace(cfg.Session.DatabasePath); dbPath != "" {
			if info, err := os.Stat(dbPath); err == nil {
				appendPermFindings(&audit, "session database", dbPath, info.Mode())
			}
		}

		if isPublicBind(cfg.Sidecar.Host) {
			audit.Findings = append(audit.Findings, SecurityFinding{
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("sidecar.host %q is not loopback-only; the local model endpoint has no authentication", cfg.Sidecar.Host),
			})
		}

		if isPublicBind(hostOnly(cfg.Server.BindAddress)) {
			audit.Findings = append(audit.Findings, SecurityFinding{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("server.bind_address %q is not loopback-only", cfg.Server.BindAddress),
			})
		}
	}

	return audit
}

func appendPermFindings(audit *SecurityAudit, label, path string, mode os.FileMode) {
	perm := mode.Perm()
	if perm&0o022 != 0 {
		audit.Findings = append(audit.Findings, SecurityFinding{
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%s %q is group/world writable (%#o)", label, path, perm),
		})
	}
	if perm&0o044 != 0 {
		audit.Findings = append(audit.Findings, SecurityFinding{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%s %q is group/world readable (%#o)", label, path, perm),
		})
	}
}

func hostOnly(bindAddress string) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(bindAddress))
	if err != nil {
		return bindAddress
	}
	return host
}

func isPublicBind(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return true
	}
	if strings.EqualFold(trimmed, "localhost") {
		return false
	}
	if ip := net.ParseIP(trimmed); ip != nil {
		return !ip.IsLoopback()
	}
	return true
}
